// Package errors provides coded, actionable error values for navrouter.
//
// Each error has a registered code that maps to a category, a short message,
// an optional explanation and a hint:
//
//	R0xx  route registration (bad patterns)
//	C0xx  configuration loading and validation
//	M0xx  route manifests and view content stores
//	P0xx  thin-client navigation protocol
//	X0xx  command line usage
//
// # Usage
//
//	err := errors.New("R001").
//	    WithSubject("/users/:").
//	    Wrap(routepath.ErrInvalidPattern)
//
//	fmt.Fprint(os.Stderr, err.Format())
//	// ERROR R001: Invalid route pattern
//	//
//	//   /users/:
//	//
//	//   Parameter segments need a name (:id) and may carry one trailing ...
//	//
//	//   Hint: Check for a bare ':' segment, a repeated parameter name, ...
package errors
