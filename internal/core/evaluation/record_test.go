package evaluation

import (
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw     string
		want    Status
		wantErr bool
	}{
		{"master", StatusMaster, false},
		{"MASTER", StatusMaster, false},
		{"attempt-1", StatusAttempt1, false},
		{" Attempt_2 ", StatusAttempt2, false},
		{"NOT_STARTED", StatusNotStarted, false},
		{"expert", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseStatus(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStatus(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	if r, err := ParseRole("Mentor"); err != nil || r != RoleMentor {
		t.Errorf("ParseRole(Mentor) = %q, %v", r, err)
	}
	if r, err := ParseRole("evaluator"); err != nil || r != RoleEvaluator {
		t.Errorf("ParseRole(evaluator) = %q, %v", r, err)
	}
	if _, err := ParseRole("manager"); err == nil {
		t.Error("ParseRole(manager) should fail")
	}
}

func TestFullyMastered_RequiresBothTracks(t *testing.T) {
	tests := []struct {
		name      string
		mentor    Status
		evaluator Status
		full      bool
		either    bool
	}{
		{"both master", StatusMaster, StatusMaster, true, true},
		{"mentor only", StatusMaster, StatusAttempt2, false, true},
		{"evaluator only", StatusNotStarted, StatusMaster, false, true},
		{"neither", StatusAttempt1, StatusAttempt1, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRecord("PROMO-001", "EMP-001", "T1", "ST-1")
			r.MentorStatus = tt.mentor
			r.EvaluatorStatus = tt.evaluator
			if r.FullyMastered() != tt.full {
				t.Errorf("FullyMastered() = %v, want %v", r.FullyMastered(), tt.full)
			}
			if r.EitherMastered() != tt.either {
				t.Errorf("EitherMastered() = %v, want %v", r.EitherMastered(), tt.either)
			}
		})
	}
}

func TestCarriedForwardRecord(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	r := CarriedForwardRecord("PROMO-001", "EMP-001", "T1", "ST-1", "H-1", now)

	if !r.FullyMastered() {
		t.Error("carried forward record should be fully mastered")
	}
	if len(r.History) != 1 {
		t.Fatalf("History len = %d, want 1", len(r.History))
	}
	entry := r.History[0]
	if entry.Role != RoleMentor || entry.Status != StatusMaster || entry.Feedback != CarriedForwardFeedback {
		t.Errorf("unexpected synthetic entry: %+v", entry)
	}
	if !r.CarriedForward() {
		t.Error("CarriedForward() should be true")
	}
	if NewRecord("PROMO-001", "EMP-001", "T1", "ST-2").CarriedForward() {
		t.Error("fresh record should not be carried forward")
	}
}

func TestApply(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	r := NewRecord("PROMO-001", "EMP-001", "T1", "ST-1")
	r = Apply(r, HistoryEntry{ID: "H-1", EvaluatorID: "EMP-100", Role: RoleMentor, Status: StatusAttempt1, Feedback: "close", EvaluatedAt: t1})
	r = Apply(r, HistoryEntry{ID: "H-2", EvaluatorID: "EMP-100", Role: RoleMentor, Status: StatusMaster, EvaluatedAt: t2})
	r = Apply(r, HistoryEntry{ID: "H-3", EvaluatorID: "EMP-300", Role: RoleEvaluator, Status: StatusAttempt2, Feedback: "again", EvaluatedAt: t2})

	if len(r.History) != 3 {
		t.Fatalf("History len = %d, want 3", len(r.History))
	}
	if r.MentorStatus != StatusMaster || r.MentorFeedback != "" || !r.MentorEvaluatedAt.Equal(t2) {
		t.Errorf("mentor fields should mirror latest mentor entry: %+v", r)
	}
	if r.MentorID != "EMP-100" || r.EvaluatorID != "EMP-300" {
		t.Errorf("owners = %q/%q", r.MentorID, r.EvaluatorID)
	}
	if r.EvaluatorStatus != StatusAttempt2 || r.EvaluatorFeedback != "again" {
		t.Errorf("evaluator fields not mirrored: %+v", r)
	}
	if r.FullyMastered() {
		t.Error("should not be fully mastered with evaluator at attempt_2")
	}

	// Regression is allowed: the engine does not enforce monotonic order.
	r = Apply(r, HistoryEntry{ID: "H-4", EvaluatorID: "EMP-100", Role: RoleMentor, Status: StatusNotStarted, EvaluatedAt: t2})
	if r.MentorStatus != StatusNotStarted {
		t.Errorf("MentorStatus = %q, want not_started", r.MentorStatus)
	}
}

func TestApply_DoesNotAliasHistory(t *testing.T) {
	base := NewRecord("PROMO-001", "EMP-001", "T1", "ST-1")
	base.History = make([]HistoryEntry, 0, 4)
	a := Apply(base, HistoryEntry{ID: "A", Role: RoleMentor, Status: StatusAttempt1})
	b := Apply(base, HistoryEntry{ID: "B", Role: RoleMentor, Status: StatusAttempt2})
	if a.History[0].ID != "A" || b.History[0].ID != "B" {
		t.Errorf("history slices aliased: %v / %v", a.History, b.History)
	}
}

func TestMentorTrackComplete(t *testing.T) {
	mastered := NewRecord("P", "E", "T", "S1")
	mastered.MentorStatus = StatusMaster
	pending := NewRecord("P", "E", "T", "S2")
	pending.MentorStatus = StatusAttempt2

	if MentorTrackComplete(nil) {
		t.Error("empty promotion should not open the evaluator gate")
	}
	if MentorTrackComplete([]Record{mastered, pending}) {
		t.Error("gate should stay closed while any mentor status is below master")
	}
	if !MentorTrackComplete([]Record{mastered}) {
		t.Error("gate should open when every mentor status is master")
	}
}

func TestOwnerOf(t *testing.T) {
	r := NewRecord("PROMO-001", "EMP-001", "T-1", "ST-1")
	r = Apply(r, HistoryEntry{ID: "h1", EvaluatorID: "EMP-100", Role: RoleMentor, Status: StatusAttempt1})

	if got := r.OwnerOf(RoleMentor); got != "EMP-100" {
		t.Errorf("OwnerOf(mentor) = %q, want EMP-100", got)
	}
	if got := r.OwnerOf(RoleEvaluator); got != "" {
		t.Errorf("OwnerOf(evaluator) = %q, want empty", got)
	}
	if RoleMentor.Other() != RoleEvaluator || RoleEvaluator.Other() != RoleMentor {
		t.Error("Other() should swap mentor and evaluator")
	}
}
