package domain

import "time"

type Job struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`   // import_text, import_project, export_project, backup
	Status    string    `json:"status"` // queued, running, done, failed, canceled
	ProjectID *int64    `json:"project_id"`
	ParamsRaw string    `json:"params_json"`
	Progress  int       `json:"progress"`
	Total     int       `json:"total"`
	Error     string    `json:"error"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type JobLog struct {
	ID      int64     `json:"id"`
	JobID   int64     `json:"job_id"`
	Time    time.Time `json:"ts"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
}
