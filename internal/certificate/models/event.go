package models

import "encoding/json"

// CourseCompletion is the inbound course-completed event. Payload keeps every
// top-level string value so templates can reference keys this struct does not
// declare (timeComplete, infoCompany, and whatever upstream adds next).
type CourseCompletion struct {
	CertificateID string            `json:"certificateId"`
	StudentID     string            `json:"studentId"`
	StudentName   string            `json:"studentName"`
	StudentEmail  string            `json:"studentEmail"`
	CourseID      string            `json:"courseId"`
	CourseName    string            `json:"courseName"`
	Template      string            `json:"template"`
	FieldValues   map[string]string `json:"fieldValues"`
	Payload       map[string]string `json:"-"`
}

// ParseCourseCompletion decodes an event, retaining unknown top-level string
// values in Payload.
func ParseCourseCompletion(raw []byte) (*CourseCompletion, error) {
	var ev CourseCompletion
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, err
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	ev.Payload = make(map[string]string, len(generic))
	for key, value := range generic {
		if key == "fieldValues" {
			continue
		}
		if s, ok := value.(string); ok {
			ev.Payload[key] = s
		}
	}
	return &ev, nil
}

// MissingFields reports which required keys are absent. The consumer drops
// events failing this check before any store access.
func (ev *CourseCompletion) MissingFields() []string {
	var missing []string
	if ev.StudentID == "" {
		missing = append(missing, "studentId")
	}
	if ev.CourseID == "" {
		missing = append(missing, "courseId")
	}
	if ev.Template == "" {
		missing = append(missing, "template")
	}
	return missing
}
