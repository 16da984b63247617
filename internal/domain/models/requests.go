package models

// OverviewRequest is the path of GET /currency/:code/overview.
type OverviewRequest struct {
	Code string `param:"code" validate:"required,len=3,alpha"`
}
