package constants

const (
	AssignRole          = "assign_role"
	ManageRiskProfiles  = "manage_risk_profiles"
	RunAllocationReview = "run_allocation_review"
)
