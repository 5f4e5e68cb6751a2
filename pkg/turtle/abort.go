package turtle

// abort carries a fatal script error up the stack to Guard.
type abort struct {
	err error
}

func fail(err error) {
	panic(abort{err: err})
}

// Guard runs a script and returns the error that aborted it, if any.
// Panics that are not turtle aborts propagate unchanged.
func Guard(script func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			a, ok := r.(abort)
			if !ok {
				panic(r)
			}
			err = a.err
		}
	}()
	script()
	return nil
}
