// Package route decides which screen to draw for the current location and
// session state.
//
// Two locations exist: "/" (the dashboard, protected) and "/login".
//
//	location  session        decision
//	/         unknown        loading
//	/         anonymous      redirect to /login, replacing the entry
//	/         authenticated  render dashboard
//	/login    unknown        loading
//	/login    anonymous      render login
//	/login    authenticated  redirect to /, pushing a new entry
//	other     any            not found
//
// Redirects away from a protected location replace the history entry, so
// going back never lands on a location that would redirect again. Signing
// out pops back to the login entry that led to the dashboard instead of
// stacking another one.
package route
