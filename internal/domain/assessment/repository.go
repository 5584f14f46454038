package assessment

import "context"

// ApplicationRepository - interface for the job_applications table
type ApplicationRepository interface {
	Create(ctx context.Context, a Application) (Application, error)
}
