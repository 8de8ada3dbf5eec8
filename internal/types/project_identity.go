package types

// ProjectIdentity is an (owner, project) pair on the code hosting platform.
type ProjectIdentity struct {
	Owner   string `json:"owner"`
	Project string `json:"project"`
}

// Valid reports whether both owner and project are non-empty.
func (p ProjectIdentity) Valid() bool {
	return p.Owner != "" && p.Project != ""
}

// String returns "owner/project".
func (p ProjectIdentity) String() string {
	return p.Owner + "/" + p.Project
}
