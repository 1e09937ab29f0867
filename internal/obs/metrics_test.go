package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                                   "/",
		"/metrics":                           "/metrics",
		"/v1/jobs":                           "/v1/jobs",
		"/v1/jobs/abc":                       "/v1/jobs/:id",
		"/v1/jobs/abc/apply":                 "/v1/jobs/:id/apply",
		"/v1/jobs?category=Design":           "/v1/jobs",
		"/v1/applications/xyz/status":        "/v1/applications/:id/status",
		"/v1/admin/categories/42":            "/v1/admin/categories/:id",
		"/v1/dashboard":                      "/v1/dashboard",
		"/v1/jobs/abc/apply/extra/segments":  "/v1/jobs/abc/apply/extra/segments",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
