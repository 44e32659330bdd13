package models

import "time"

// IssueRequest is the synchronous issuance boundary: an authenticated caller
// supplies identity fields and an optional explicit field-value mapping.
type IssueRequest struct {
	CertificateID string            `json:"certificateId,omitempty"`
	TemplateID    string            `json:"templateId,omitempty"`
	// Template is an alias for TemplateID used by event payloads.
	Template     string            `json:"template,omitempty"`
	StudentID    string            `json:"studentId"`
	StudentName  string            `json:"studentName"`
	StudentEmail string            `json:"studentEmail"`
	CourseID     string            `json:"courseId"`
	CourseName   string            `json:"courseName"`
	IssueDate    *time.Time        `json:"issueDate,omitempty"`
	ExpiryDate   *time.Time        `json:"expiryDate,omitempty"`
	IssuedBy     string            `json:"issuedBy,omitempty"`
	FieldValues  map[string]string `json:"fieldValues,omitempty"`
	// Extra carries any additional top-level payload keys so templates can
	// reference caller-defined field names.
	Extra map[string]string `json:"-"`
}

// TemplateRef returns the explicit template reference, if any.
func (r *IssueRequest) TemplateRef() string {
	if r.TemplateID != "" {
		return r.TemplateID
	}
	return r.Template
}

// PayloadValues flattens the request into the name->value view the field
// resolver matches template field names against.
func (r *IssueRequest) PayloadValues() map[string]string {
	values := map[string]string{
		"studentId":    r.StudentID,
		"studentName":  r.StudentName,
		"studentEmail": r.StudentEmail,
		"courseId":     r.CourseID,
		"courseName":   r.CourseName,
	}
	if r.IssueDate != nil {
		values["issueDate"] = r.IssueDate.Format("02/01/2006")
	}
	for k, v := range r.Extra {
		if _, taken := values[k]; !taken {
			values[k] = v
		}
	}
	return values
}
