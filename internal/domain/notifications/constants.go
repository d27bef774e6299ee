package notifications

const (
	TypeAssignmentCreated  = "assignment_created"
	TypeAssignmentUpdated  = "assignment_updated"
	TypeAssignmentArchived = "assignment_archived"
	TypeRequestSubmitted   = "request_submitted"
	TypeRequestApproved    = "request_approved"
	TypeRequestRejected    = "request_rejected"
)
