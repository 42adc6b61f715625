package user

// User is the authenticated (or demo) owner of all planner documents.
// Authentication itself happens outside this service.
type User struct {
	Uid         string
	DisplayName string
	// Demo sessions are stored in the ephemeral backend.
	Demo bool
}

// SessionKey tells apart the demo and the authenticated session of one uid.
// Their documents live in different backends, so per-user state held outside
// the backends must be keyed by it.
func (u User) SessionKey() string {
	if u.Demo {
		return "demo:" + u.Uid
	}
	return u.Uid
}
