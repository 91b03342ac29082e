package user

// Capability describes what a role is allowed to do. Authorization checks go
// through this table instead of ad-hoc role comparisons scattered around the
// services.
type Capability struct {
	CanListAllUsers      bool
	CanListOwnTeam       bool
	CanCreateAnyUser     bool
	CanCreateExecutives  bool
	CanAssignManager     bool
	CanAssignExecutive   bool
	CanEditClosedLeads   bool
	CanViewLeadHistory   bool
	HasTeamPerformance   bool
	SeesAllLeads         bool
	SeesManagedLeads     bool
	SeesOwnAssignedLeads bool
}

var capabilities = map[Role]Capability{
	RoleAdmin: {
		CanListAllUsers:    true,
		CanCreateAnyUser:   true,
		CanAssignManager:   true,
		CanAssignExecutive: true,
		CanEditClosedLeads: true,
		CanViewLeadHistory: true,
		HasTeamPerformance: true,
		SeesAllLeads:       true,
	},
	RoleManager: {
		CanListOwnTeam:      true,
		CanCreateExecutives: true,
		CanAssignExecutive:  true,
		CanViewLeadHistory:  true,
		HasTeamPerformance:  true,
		SeesManagedLeads:    true,
	},
	RoleExecutive: {
		SeesOwnAssignedLeads: true,
	},
}

func (r Role) Can() Capability {
	return capabilities[r]
}
