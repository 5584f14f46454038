package branch

// BranchResponse represents the response structure for a branch.
type BranchResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Address  *string `json:"address,omitempty"`
	Timezone string  `json:"timezone"`
}

func NewBranchResponse(b Branch) BranchResponse {
	return BranchResponse{
		ID:       b.ID,
		Name:     b.Name,
		Address:  b.Address,
		Timezone: b.Timezone,
	}
}
