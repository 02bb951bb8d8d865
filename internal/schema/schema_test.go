package schema

import (
	"errors"
	"strings"
	"testing"
)

func fieldMessages(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T (%v)", err, err)
	}
	out := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestDecodeCreateProject(t *testing.T) {
	var req CreateProjectRequest
	body := `{"title":"Demo","script":"Hello world","duration":60,"userId":4}`
	if err := Decode(strings.NewReader(body), &req); err != nil {
		t.Fatalf("decode: %v", err)
	}

	input := req.Model()
	if input.Title != "Demo" || input.Script != "Hello world" || input.Duration != 60 {
		t.Fatalf("unexpected input: %+v", input)
	}
	if input.UserID == nil || *input.UserID != 4 {
		t.Fatalf("expected user id 4, got %v", input.UserID)
	}
	if input.Style != "" || input.Status != "" {
		t.Fatalf("expected omitted fields to stay empty for store defaults: %+v", input)
	}
}

func TestDecodeCreateProjectValidation(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		field string
		msg   string
	}{
		{"missingScript", `{"title":"Demo"}`, "script", "is required"},
		{"missingTitle", `{"script":"s"}`, "title", "is required"},
		{"scriptTooLong", `{"title":"t","script":"` + strings.Repeat("a", MaxScriptLength+1) + `"}`, "script", "must be at most 1000 characters"},
		{"zeroDuration", `{"title":"t","script":"s","duration":0}`, "duration", "must be greater than 0"},
		{"badStatus", `{"title":"t","script":"s","status":"rendering"}`, "status", "must be one of: draft, generating, completed, failed"},
		{"wrongType", `{"title":"t","script":"s","duration":"long"}`, "duration", "must be an integer"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req CreateProjectRequest
			fields := fieldMessages(t, Decode(strings.NewReader(tc.body), &req))
			if got := fields[tc.field]; got != tc.msg {
				t.Fatalf("expected %s to fail with %q, got %q (all: %v)", tc.field, tc.msg, got, fields)
			}
		})
	}
}

func TestDecodeReportsEveryFailedField(t *testing.T) {
	var req CreateProjectRequest
	fields := fieldMessages(t, Decode(strings.NewReader(`{}`), &req))

	if len(fields) != 2 {
		t.Fatalf("expected title and script to fail, got %v", fields)
	}
	if _, ok := fields["title"]; !ok {
		t.Fatalf("expected title failure, got %v", fields)
	}
	if _, ok := fields["script"]; !ok {
		t.Fatalf("expected script failure, got %v", fields)
	}
}

func TestDecodeEmptyBodyIsEmptyObject(t *testing.T) {
	var req UpdateProjectRequest
	if err := Decode(strings.NewReader(""), &req); err != nil {
		t.Fatalf("expected empty body to decode, got %v", err)
	}
}

func TestDecodeMalformedBody(t *testing.T) {
	var req CreateProjectRequest
	if err := Decode(strings.NewReader(`{"title":`), &req); !errors.Is(err, ErrMalformedBody) {
		t.Fatalf("expected ErrMalformedBody, got %v", err)
	}
	if err := Decode(strings.NewReader(`[1,2]`), &req); !errors.Is(err, ErrMalformedBody) {
		t.Fatalf("expected ErrMalformedBody for array body, got %v", err)
	}
}

func TestUpdateProjectPatchDistinguishesNull(t *testing.T) {
	var req UpdateProjectRequest
	body := `{"status":"completed","videoUrl":"https://cdn.example.com/v.mp4","thumbnailUrl":null}`
	if err := Decode(strings.NewReader(body), &req); err != nil {
		t.Fatalf("decode: %v", err)
	}

	patch := req.Patch()
	if patch.Status == nil || *patch.Status != "completed" {
		t.Fatalf("expected status in patch: %+v", patch)
	}
	if !patch.VideoURL.Set || patch.VideoURL.Value == nil || *patch.VideoURL.Value != "https://cdn.example.com/v.mp4" {
		t.Fatalf("expected video url set: %+v", patch.VideoURL)
	}
	if !patch.ThumbnailURL.Set || patch.ThumbnailURL.Value != nil {
		t.Fatalf("expected explicit null thumbnail: %+v", patch.ThumbnailURL)
	}
	if patch.UserID.Set {
		t.Fatalf("expected absent user id to stay unset")
	}
	if patch.Title != nil || patch.Script != nil || patch.Duration != nil {
		t.Fatalf("expected absent fields to stay nil: %+v", patch)
	}
}

func TestUpdateProjectValidation(t *testing.T) {
	var req UpdateProjectRequest
	fields := fieldMessages(t, Decode(strings.NewReader(`{"title":"","duration":-5}`), &req))
	if fields["title"] != "must not be empty" {
		t.Fatalf("unexpected title message: %v", fields)
	}
	if fields["duration"] != "must be greater than 0" {
		t.Fatalf("unexpected duration message: %v", fields)
	}

	var typed UpdateProjectRequest
	fields = fieldMessages(t, Decode(strings.NewReader(`{"userId":"seven"}`), &typed))
	if fields["userId"] != "must be an integer" {
		t.Fatalf("unexpected userId message: %v", fields)
	}
}

func TestCreateTemplateRequest(t *testing.T) {
	var req CreateTemplateRequest
	body := `{"name":"Gaming","description":"Dynamic","thumbnailUrl":"https://img","category":"gaming"}`
	if err := Decode(strings.NewReader(body), &req); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := req.Model().IsActive; got != 1 {
		t.Fatalf("expected templates to default active, got %d", got)
	}

	var bad CreateTemplateRequest
	fields := fieldMessages(t, Decode(strings.NewReader(`{"name":"x","isActive":2}`), &bad))
	for _, field := range []string{"description", "thumbnailUrl", "category", "isActive"} {
		if _, ok := fields[field]; !ok {
			t.Fatalf("expected %s to fail, got %v", field, fields)
		}
	}
}

func TestDecodeReportsTypeAndRuleFailuresTogether(t *testing.T) {
	var req CreateProjectRequest
	fields := fieldMessages(t, Decode(strings.NewReader(`{"title":"Demo","duration":"long"}`), &req))

	if fields["duration"] != "must be an integer" {
		t.Fatalf("unexpected duration message: %v", fields)
	}
	if fields["script"] != "is required" {
		t.Fatalf("expected missing script alongside the type error: %v", fields)
	}
	if len(fields) != 2 {
		t.Fatalf("expected exactly duration and script, got %v", fields)
	}
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	tests := []string{
		`{"title":"Demo","script":"Hi"} garbage`,
		`{"title":"Demo","script":"Hi"}{"title":"Again"}`,
		`{"title":"Demo","duration":"long"} 1`,
	}

	for _, body := range tests {
		var req CreateProjectRequest
		if err := Decode(strings.NewReader(body), &req); !errors.Is(err, ErrMalformedBody) {
			t.Fatalf("expected ErrMalformedBody for %q, got %v", body, err)
		}
	}

	var req CreateProjectRequest
	if err := Decode(strings.NewReader("{\"title\":\"Demo\",\"script\":\"Hi\"}\n  "), &req); err != nil {
		t.Fatalf("expected trailing whitespace to be accepted, got %v", err)
	}
}
