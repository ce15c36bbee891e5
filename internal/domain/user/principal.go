package user

// Principal is the authenticated identity attached to a request.
type Principal struct {
	MemberID int64
	UserName string
	IsAdmin  bool
}

// CanActOn reports whether the principal may modify resources owned by memberID.
func (p Principal) CanActOn(memberID int64) bool {
	return p.IsAdmin || p.MemberID == memberID
}
