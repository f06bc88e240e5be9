package domain

import (
	"errors"
	"testing"
)

func TestParseCampaignStatusFromString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    CampaignStatus
		wantErr bool
	}{
		{name: "valid uppercase", input: "SENDING", want: CampaignStatusSending},
		{name: "valid lowercase with spaces", input: " paused ", want: CampaignStatusPaused},
		{name: "invalid", input: "ARCHIVED", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseCampaignStatusFromString(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("ParseCampaignStatusFromString() error = %v, want ErrValidation", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseCampaignStatusFromString() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseCampaignStatusFromString() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCampaignStatusTransitionsFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status    CampaignStatus
		terminal  bool
		startable bool
	}{
		{CampaignStatusDraft, false, true},
		{CampaignStatusScheduled, false, true},
		{CampaignStatusSending, false, false},
		{CampaignStatusPaused, false, false},
		{CampaignStatusCompleted, true, false},
		{CampaignStatusCancelled, true, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.status.String(), func(t *testing.T) {
			t.Parallel()

			if got := tt.status.IsTerminal(); got != tt.terminal {
				t.Fatalf("IsTerminal() = %v, want %v", got, tt.terminal)
			}
			if got := tt.status.IsStartable(); got != tt.startable {
				t.Fatalf("IsStartable() = %v, want %v", got, tt.startable)
			}
		})
	}
}

func TestValidEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		email string
		want  bool
	}{
		{name: "plain address", email: "rosa@local98.org", want: true},
		{name: "missing at sign", email: "rosa.local98.org", want: false},
		{name: "empty", email: "", want: false},
		{name: "whitespace only", email: "   ", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ValidEmail(tt.email); got != tt.want {
				t.Fatalf("ValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestCampaignValidate(t *testing.T) {
	t.Parallel()

	base := Campaign{
		OrgID:     "org-1",
		Name:      "October dues reminder",
		Subject:   "Dues are due",
		BodyHTML:  "<p>Hello {first_name}</p>",
		FromName:  "Local 98",
		FromEmail: "news@local98.org",
		Status:    CampaignStatusDraft,
	}

	tests := []struct {
		name    string
		mutate  func(*Campaign)
		wantErr bool
	}{
		{
			name:   "valid campaign",
			mutate: func(c *Campaign) {},
		},
		{
			name: "text body only is enough",
			mutate: func(c *Campaign) {
				c.BodyHTML = ""
				c.BodyText = "Hello"
			},
		},
		{
			name: "missing org",
			mutate: func(c *Campaign) {
				c.OrgID = ""
			},
			wantErr: true,
		},
		{
			name: "missing name",
			mutate: func(c *Campaign) {
				c.Name = "  "
			},
			wantErr: true,
		},
		{
			name: "missing subject",
			mutate: func(c *Campaign) {
				c.Subject = ""
			},
			wantErr: true,
		},
		{
			name: "missing body",
			mutate: func(c *Campaign) {
				c.BodyHTML = ""
				c.BodyText = ""
			},
			wantErr: true,
		},
		{
			name: "bad sender email",
			mutate: func(c *Campaign) {
				c.FromEmail = "not-an-address"
			},
			wantErr: true,
		},
		{
			name: "invalid status",
			mutate: func(c *Campaign) {
				c.Status = CampaignStatus("ARCHIVED")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			current := base
			tt.mutate(&current)

			err := current.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("Validate() error = %v, want ErrValidation", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestTargetCriteriaJSONRoundTrip(t *testing.T) {
	t.Parallel()

	criteria := TargetCriteria{
		Departments: []string{"D1", "D2"},
		Statuses:    []string{"MEMBER"},
	}

	value, err := criteria.Value()
	if err != nil {
		t.Fatalf("Value() unexpected error = %v", err)
	}

	var decoded TargetCriteria
	if err := decoded.Scan(value); err != nil {
		t.Fatalf("Scan() unexpected error = %v", err)
	}

	if len(decoded.Departments) != 2 || decoded.Departments[0] != "D1" {
		t.Fatalf("Scan() departments = %v, want [D1 D2]", decoded.Departments)
	}
	if len(decoded.EmploymentTypes) != 0 {
		t.Fatalf("Scan() employment types = %v, want empty", decoded.EmploymentTypes)
	}

	var fromNil TargetCriteria
	if err := fromNil.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) unexpected error = %v", err)
	}
	if !fromNil.IsEmpty() {
		t.Fatal("Scan(nil) should yield empty criteria")
	}
}

func TestMemberFullName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		member Member
		want   string
	}{
		{name: "both names", member: Member{FirstName: "Rosa", LastName: "Diaz"}, want: "Rosa Diaz"},
		{name: "first only", member: Member{FirstName: "Rosa"}, want: "Rosa"},
		{name: "last only", member: Member{LastName: "Diaz"}, want: "Diaz"},
		{name: "padded", member: Member{FirstName: " Rosa ", LastName: " Diaz "}, want: "Rosa Diaz"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.member.FullName(); got != tt.want {
				t.Fatalf("FullName() = %q, want %q", got, tt.want)
			}
		})
	}
}
