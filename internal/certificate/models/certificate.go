package models

import "time"

// Status tracks a certificate through its lifecycle. Revoked is terminal.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusGenerated  Status = "generated"
	StatusSent       Status = "sent"
	StatusRevoked    Status = "revoked"
)

// Certificate is the durable record of one issuance: who, which course, which
// template snapshot, where the artifact lives, and the field values actually
// baked into it. TemplateID is an identity link only; later template edits
// never change FieldValues or the rendered artifact.
type Certificate struct {
	ID            string     `json:"id"`
	CertificateID string     `json:"certificateId"`
	TemplateID    string     `json:"templateId"`
	StudentID     string     `json:"studentId"`
	StudentName   string     `json:"studentName"`
	StudentEmail  string     `json:"studentEmail"`
	CourseID      string     `json:"courseId"`
	CourseName    string     `json:"courseName"`
	IssueDate     time.Time  `json:"issueDate"`
	ExpiryDate    *time.Time `json:"expiryDate,omitempty"`
	FilePath      string     `json:"filePath"`
	FieldValues   map[string]string `json:"fieldValues"`
	Status        Status     `json:"status"`
	IssuedBy      string     `json:"issuedBy,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Filter narrows certificate listings.
type Filter struct {
	StudentID string
	CourseID  string
	Status    Status
}
