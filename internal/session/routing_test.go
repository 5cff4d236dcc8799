package session

import "testing"

func TestDesiredAction(t *testing.T) {
	cases := []struct {
		name             string
		state            State
		route            Route
		redirectInFlight bool
		want             Action
	}{
		{
			name:  "loading never acts",
			state: StateLoading,
			route: RouteDashboard,
			want:  ActionNone,
		},
		{
			name:  "loading never acts on auth routes",
			state: StateLoading,
			route: RouteSignIn,
			want:  ActionNone,
		},
		{
			name:             "redirect in flight suppresses auth route handling",
			state:            StateAuthenticatedComplete,
			route:            RouteSignIn,
			redirectInFlight: true,
			want:             ActionNone,
		},
		{
			name:             "redirect in flight does not shield protected routes",
			state:            StateUnauthenticated,
			route:            RouteDashboard,
			redirectInFlight: true,
			want:             ActionRedirectSignIn,
		},
		{
			name:  "unauthenticated on protected route",
			state: StateUnauthenticated,
			route: RouteDashboard,
			want:  ActionRedirectSignIn,
		},
		{
			name:  "unauthenticated on nested protected route",
			state: StateUnauthenticated,
			route: Route("/dashboard/orders"),
			want:  ActionRedirectSignIn,
		},
		{
			name:  "unauthenticated on profile completion route",
			state: StateUnauthenticated,
			route: RouteProfileCompletion,
			want:  ActionRedirectSignIn,
		},
		{
			name:  "unauthenticated on sign-in stays",
			state: StateUnauthenticated,
			route: RouteSignIn,
			want:  ActionNone,
		},
		{
			name:  "unauthenticated on public route stays",
			state: StateUnauthenticated,
			route: Route("/"),
			want:  ActionNone,
		},
		{
			name:  "incomplete profile pulled to completion from dashboard",
			state: StateAuthenticatedIncomplete,
			route: RouteDashboard,
			want:  ActionRedirectProfileCompletion,
		},
		{
			name:  "incomplete profile pulled to completion from sign-in",
			state: StateAuthenticatedIncomplete,
			route: RouteSignIn,
			want:  ActionRedirectProfileCompletion,
		},
		{
			name:  "incomplete profile pulled to completion from public route",
			state: StateAuthenticatedIncomplete,
			route: Route("/"),
			want:  ActionRedirectProfileCompletion,
		},
		{
			name:  "incomplete profile stays on completion route",
			state: StateAuthenticatedIncomplete,
			route: RouteProfileCompletion,
			want:  ActionNone,
		},
		{
			name:  "complete profile bounced off sign-in",
			state: StateAuthenticatedComplete,
			route: RouteSignIn,
			want:  ActionRedirectDashboard,
		},
		{
			name:  "complete profile bounced off sign-up",
			state: StateAuthenticatedComplete,
			route: RouteSignUp,
			want:  ActionRedirectDashboard,
		},
		{
			name:  "complete profile bounced off completion route",
			state: StateAuthenticatedComplete,
			route: RouteProfileCompletion,
			want:  ActionRedirectDashboard,
		},
		{
			name:  "complete profile stays on dashboard",
			state: StateAuthenticatedComplete,
			route: RouteDashboard,
			want:  ActionNone,
		},
		{
			name:  "complete profile stays on public route",
			state: StateAuthenticatedComplete,
			route: Route("/"),
			want:  ActionNone,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DesiredAction(tc.state, tc.route, tc.redirectInFlight)
			if got != tc.want {
				t.Fatalf("DesiredAction(%s, %s, %v) = %s, want %s", tc.state, tc.route, tc.redirectInFlight, got, tc.want)
			}
		})
	}
}

func TestRouteClassification(t *testing.T) {
	if !Route("/dashboard/orders").IsProtected() {
		t.Fatal("nested dashboard route should be protected")
	}
	if Route("/").IsProtected() {
		t.Fatal("root route should not be protected")
	}
	if !RouteProfileCompletion.IsProtected() {
		t.Fatal("profile completion route should be protected")
	}
	if !RouteSignIn.IsAuth() || !RouteSignUp.IsAuth() {
		t.Fatal("sign-in and sign-up should be auth routes")
	}
	if RouteDashboard.IsAuth() {
		t.Fatal("dashboard should not be an auth route")
	}
}
