package session

import "strings"

// Route is a client navigation target, e.g. "/dashboard/orders".
type Route string

// Well-known routes the machine redirects between.
const (
	RouteSignIn            Route = "/sign-in"
	RouteSignUp            Route = "/sign-up"
	RouteDashboard         Route = "/dashboard"
	RouteProfileCompletion Route = "/dashboard/complete-profile"
)

// Action is the navigation the caller should perform. The machine never
// navigates itself; executing the action is the caller's concern.
type Action string

const (
	ActionNone                      Action = "none"
	ActionRedirectSignIn            Action = "redirect_sign_in"
	ActionRedirectProfileCompletion Action = "redirect_profile_completion"
	ActionRedirectDashboard         Action = "redirect_dashboard"
)

// IsAuth reports whether the route belongs to the sign-in/sign-up flow.
func (r Route) IsAuth() bool {
	return r == RouteSignIn || r == RouteSignUp
}

// IsProtected reports whether the route requires a signed-in session.
func (r Route) IsProtected() bool {
	return strings.HasPrefix(string(r), string(RouteDashboard))
}

// IsProfileCompletion reports whether the route is the onboarding surface.
func (r Route) IsProfileCompletion() bool {
	return r == RouteProfileCompletion
}

// DesiredAction is the pure routing policy. redirectInFlight suppresses
// evaluation on auth routes while an external redirect completion is still
// outstanding; applying the policy there would strand the visitor.
func DesiredAction(state State, route Route, redirectInFlight bool) Action {
	if state == StateLoading {
		return ActionNone
	}
	if route.IsAuth() && redirectInFlight {
		return ActionNone
	}

	switch state {
	case StateUnauthenticated:
		if route.IsProtected() {
			return ActionRedirectSignIn
		}
	case StateAuthenticatedIncomplete:
		if !route.IsProfileCompletion() {
			return ActionRedirectProfileCompletion
		}
	case StateAuthenticatedComplete:
		if route.IsAuth() || route.IsProfileCompletion() {
			return ActionRedirectDashboard
		}
	}
	return ActionNone
}
