package services

import "errors"

// Kind classifies a clan operation failure for callers that translate it into
// a user-facing message or an HTTP status.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindForbidden    Kind = "forbidden"
	KindInvalidInput Kind = "invalid_input"
	KindUnconfigured Kind = "unconfigured"
	KindInternal     Kind = "internal"
)

// Error is a named, kinded failure. Instances are sentinels compared with
// errors.Is; WithMessage derives a copy that still matches its sentinel.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of e with a more specific message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: msg}
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// KindOf returns the kind of err, or KindInternal for anything that is not a
// clan operation error (persistence faults and the like).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Not found.
var (
	ErrClanNotFound          = newError(KindNotFound, "clan_not_found", "Clan not found.")
	ErrClanGone              = newError(KindNotFound, "clan_gone", "That clan no longer exists.")
	ErrNotInClan             = newError(KindNotFound, "not_in_clan", "User is not in this clan.")
	ErrNoPendingInvite       = newError(KindNotFound, "no_pending_invite", "You do not have a pending clan invite.")
	ErrUserNotFound          = newError(KindNotFound, "user_not_found", "User has no clan record.")
	ErrInviteNoLongerValid   = newError(KindNotFound, "invite_no_longer_active", "This invite is no longer valid.")
	ErrDisbandNoLongerActive = newError(KindNotFound, "disband_no_longer_active", "This disband request is no longer active.")
)

// Conflicts.
var (
	ErrAlreadyInClan     = newError(KindConflict, "already_in_clan", "User is already in a clan.")
	ErrDuplicateName     = newError(KindConflict, "duplicate_name", "A clan with that name already exists.")
	ErrClanFull          = newError(KindConflict, "clan_full", "Clan is full.")
	ErrAlreadyPending    = newError(KindConflict, "already_pending", "A disband request is already pending for this clan.")
	ErrLeaderCannotLeave = newError(KindConflict, "leader_cannot_leave", "Leader cannot leave. Transfer leadership or disband the clan first.")
	ErrCannotKickLeader  = newError(KindConflict, "cannot_kick_leader", "The clan leader cannot be kicked.")
	ErrNotAMember        = newError(KindConflict, "not_a_member", "Only regular members can be promoted.")
	ErrNotACoLeader      = newError(KindConflict, "not_a_co_leader", "User is not a Co-Leader.")
	ErrCannotResetLeader = newError(KindConflict, "cannot_reset_leader", "Cannot reset a clan leader. Transfer leadership or disband the clan first.")
)

// Authority.
var (
	ErrForbidden         = newError(KindForbidden, "forbidden", "You do not have permission to do that.")
	ErrLeaderOnly        = newError(KindForbidden, "leader_only", "Only the clan leader can do that.")
	ErrLeaderOrCoLeader  = newError(KindForbidden, "leader_or_co_leader_only", "Only the Leader or Co-Leader can do that.")
	ErrCoLeaderKickLimit = newError(KindForbidden, "co_leader_kick_limit", "Co-Leaders can only kick regular members.")
	ErrAdminRequired     = newError(KindForbidden, "admin_required", "Administrator permission is required.")
	ErrWrongGuild        = newError(KindForbidden, "wrong_guild", "This action belongs to another server.")
	ErrNotInvitee        = newError(KindForbidden, "not_invitee", "This invite is not for you.")
)

// Invalid input.
var (
	ErrInvalidInput       = newError(KindInvalidInput, "invalid_input", "Invalid input.")
	ErrInvalidName        = newError(KindInvalidInput, "invalid_name", "Clan name must be 1 to 32 characters.")
	ErrInvalidColor       = newError(KindInvalidInput, "invalid_color", "Invalid color. Use hex like #FF0000.")
	ErrInvalidBounty      = newError(KindInvalidInput, "invalid_bounty", "Bounty must be a non-negative integer.")
	ErrInvalidMemberLimit = newError(KindInvalidInput, "invalid_member_limit", "Member limit must be between 2 and 100.")
	ErrSelfTarget         = newError(KindInvalidInput, "self_target", "You cannot target yourself.")
	ErrInvalidToken       = newError(KindInvalidInput, "invalid_token", "This action link is invalid or has expired.")
)

// Configuration.
var (
	ErrUnconfigured        = newError(KindUnconfigured, "unconfigured", "Clan system is not set up. Ask an admin to run setup.")
	ErrApprovalUnavailable = newError(KindUnconfigured, "approval_sink_missing", "Disband approvals are not configured. Ask an admin to run setup.")
)
