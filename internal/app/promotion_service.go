package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/ladder/internal/apperr"
	"github.com/example/ladder/internal/core/mastery"
	"github.com/example/ladder/internal/core/progress"
	"github.com/example/ladder/internal/core/promotion"
	"github.com/example/ladder/internal/core/requirement"
	"github.com/example/ladder/internal/ctxutil"
	"github.com/example/ladder/internal/logging"
	"github.com/example/ladder/internal/ports/primary"
	"github.com/example/ladder/internal/ports/secondary"
)

// PromotionOptions tunes PromotionServiceImpl.
type PromotionOptions struct {
	// AdvanceLevelOnComplete moves the employee to the target level when a
	// promotion completes.
	AdvanceLevelOnComplete bool

	Logger *logging.Logger
	Now    func() time.Time
	NewID  func() string
}

// PromotionServiceImpl implements the PromotionService interface.
type PromotionServiceImpl struct {
	tx              secondary.Transactor
	promotionRepo   secondary.PromotionRepository
	progressRepo    secondary.ProgressRepository
	requirementRepo secondary.RequirementRepository
	employeeRepo    secondary.EmployeeRepository
	certificateRepo secondary.CertificateRepository
	mastery         *MasteryServiceImpl
	lifecycle       *lifecycle
	logger          *logging.Logger
	now             func() time.Time
	newID           func() string

	// assignMu serialises check-then-create of promotions in this process.
	// The partial unique index covers other processes.
	assignMu sync.Mutex
}

// NewPromotionService creates a new PromotionService with injected dependencies.
func NewPromotionService(
	tx secondary.Transactor,
	promotionRepo secondary.PromotionRepository,
	progressRepo secondary.ProgressRepository,
	requirementRepo secondary.RequirementRepository,
	employeeRepo secondary.EmployeeRepository,
	certificateRepo secondary.CertificateRepository,
	masterySvc *MasteryServiceImpl,
	executor EffectExecutor,
	opts PromotionOptions,
) *PromotionServiceImpl {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	return &PromotionServiceImpl{
		tx:              tx,
		promotionRepo:   promotionRepo,
		progressRepo:    progressRepo,
		requirementRepo: requirementRepo,
		employeeRepo:    employeeRepo,
		certificateRepo: certificateRepo,
		mastery:         masterySvc,
		lifecycle: &lifecycle{
			promotionRepo:          promotionRepo,
			executor:               executor,
			now:                    opts.Now,
			advanceLevelOnComplete: opts.AdvanceLevelOnComplete,
		},
		logger: opts.Logger.With("promotion"),
		now:    opts.Now,
		newID:  opts.NewID,
	}
}

// assignmentInputs is everything read before an assignment is planned.
type assignmentInputs struct {
	employee *secondary.EmployeeRecord
	current  *requirement.Matrix
	target   requirement.Matrix
	mastered mastery.Set
}

func (s *PromotionServiceImpl) loadAssignmentInputs(ctx context.Context, req primary.AssignPromotionRequest) (*assignmentInputs, error) {
	if strings.TrimSpace(req.EmployeeID) == "" {
		return nil, apperr.Validation("employee is required")
	}
	if strings.TrimSpace(req.TargetJobTitleID) == "" || strings.TrimSpace(req.TargetGradeID) == "" {
		return nil, apperr.Validation("target job title and grade are required")
	}

	employee, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}

	targetRecord, err := s.requirementRepo.GetByLevel(ctx, employee.SectionID, req.TargetJobTitleID, req.TargetGradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get target requirement: %w", err)
	}
	if targetRecord == nil {
		return nil, apperr.NotFound("no requirement matrix for %s/%s/%s",
			employee.SectionID, req.TargetJobTitleID, req.TargetGradeID)
	}

	mastered, current, err := s.mastery.resolve(ctx, employee)
	if err != nil {
		return nil, err
	}

	return &assignmentInputs{
		employee: employee,
		current:  current,
		target:   matrixFromRecord(targetRecord),
		mastered: mastered,
	}, nil
}

// PreviewAssignment reports what AssignPromotion would create.
func (s *PromotionServiceImpl) PreviewAssignment(ctx context.Context, req primary.AssignPromotionRequest) (*primary.AssignmentPreview, error) {
	in, err := s.loadAssignmentInputs(ctx, req)
	if err != nil {
		return nil, err
	}

	active, err := s.promotionRepo.GetActiveByEmployee(ctx, in.employee.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check active promotion: %w", err)
	}

	diff := requirement.Diff(in.current, in.target)
	preview := &primary.AssignmentPreview{
		EmployeeID:          in.employee.ID,
		TargetRequirementID: in.target.ID,
		NewTasks:            diff.NewTasks,
		NewSubtasks:         diff.NewSubtasks(),
		TotalSubtasks:       in.target.SubtaskCount(),
		HasDifferences:      requirement.HasDifferences(in.current, in.target),
	}
	if in.current != nil {
		preview.CurrentRequirementID = in.current.ID
	}
	if active != nil {
		preview.ActivePromotionID = active.ID
	}
	for _, sub := range in.target.SubtaskIDs() {
		if in.mastered[sub] {
			preview.CarriedForward = append(preview.CarriedForward, sub)
		}
	}

	return preview, nil
}

// AssignPromotion creates a promotion and its progress records atomically.
// The assigner is the context actor.
func (s *PromotionServiceImpl) AssignPromotion(ctx context.Context, req primary.AssignPromotionRequest) (*primary.AssignPromotionResponse, error) {
	assignedBy := ctxutil.ActorFromContext(ctx)
	if assignedBy == "" {
		return nil, apperr.Validation("assigning a promotion requires an actor")
	}

	s.assignMu.Lock()
	defer s.assignMu.Unlock()

	in, err := s.loadAssignmentInputs(ctx, req)
	if err != nil {
		return nil, err
	}

	managerID := req.ManagerID
	if managerID == "" {
		managerID = in.employee.ManagerID
	}
	if managerID == "" {
		managerID = assignedBy
	}

	var plan promotion.AssignmentPlan
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		active, err := s.promotionRepo.GetActiveByEmployee(ctx, in.employee.ID)
		if err != nil {
			return fmt.Errorf("failed to check active promotion: %w", err)
		}

		guardCtx := promotion.AssignContext{
			EmployeeID:     in.employee.ID,
			HasDifferences: requirement.HasDifferences(in.current, in.target),
		}
		if active != nil {
			guardCtx.ActivePromotionID = active.ID
			guardCtx.ActivePromotionStatus = promotion.Status(active.Status)
		}
		if err := promotion.CanAssign(guardCtx).Error(); err != nil {
			return err
		}

		promotionID, err := s.promotionRepo.GetNextID(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate promotion ID: %w", err)
		}

		plan = promotion.PlanAssignment(promotion.AssignmentInput{
			PromotionID: promotionID,
			EmployeeID:  in.employee.ID,
			ManagerID:   managerID,
			AssignedBy:  assignedBy,
			Current:     in.current,
			Target:      in.target,
			Mastered:    in.mastered,
			Now:         s.now(),
			NewID:       s.newID,
		})

		if err := s.promotionRepo.Create(ctx, promotionToRecord(plan.Promotion)); err != nil {
			return err
		}

		records := make([]*secondary.ProgressRecord, 0, len(plan.Records))
		for _, r := range plan.Records {
			records = append(records, progressToRecord(r))
		}
		if err := s.progressRepo.UpsertBatch(ctx, records); err != nil {
			return fmt.Errorf("failed to create progress records: %w", err)
		}

		return s.lifecycle.executor.Execute(ctx, plan.Effects)
	})
	if err != nil {
		return nil, err
	}

	return &primary.AssignPromotionResponse{
		PromotionID:    plan.Promotion.ID,
		Promotion:      promotionToPrimary(plan.Promotion),
		TotalSubtasks:  len(plan.Records),
		CarriedForward: plan.CarriedForward,
	}, nil
}

// TransitionPromotion applies a human lifecycle action. Start and complete
// are derived from progress and cannot be requested directly.
func (s *PromotionServiceImpl) TransitionPromotion(ctx context.Context, req primary.TransitionPromotionRequest) (*primary.Promotion, error) {
	action, err := promotion.ParseAction(req.Action)
	if err != nil {
		return nil, err
	}
	if action.Derived() {
		return nil, apperr.Validation("%s is applied automatically and cannot be requested", action)
	}

	actorID := req.ActorID
	if actorID == "" {
		actorID = ctxutil.ActorFromContext(ctx)
	}
	ctx = ctxutil.WithActorID(ctx, actorID)

	var updated promotion.Promotion
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		record, err := s.promotionRepo.GetByID(ctx, req.PromotionID)
		if err != nil {
			return err
		}
		p, err := promotionFromRecord(record)
		if err != nil {
			return err
		}

		updated, err = s.lifecycle.apply(ctx, p, action, actorID, req.Reason, 0)
		if err != nil {
			return err
		}

		// A promotion whose every subtask was carried forward has nothing
		// left to evaluate once the employee accepts it.
		if action == promotion.ActionEmployeeApprove {
			progressRecords, err := s.progressRepo.ListByPromotion(ctx, updated.ID)
			if err != nil {
				return fmt.Errorf("failed to get progress records: %w", err)
			}
			records, err := recordsFromProgress(progressRecords)
			if err != nil {
				return err
			}
			if progress.Summarize(records).Unmastered() == 0 {
				updated, _, err = s.lifecycle.advance(ctx, updated, false, records, actorID)
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("promotion %s is now %s", updated.ID, updated.Status)
	return promotionToPrimary(updated), nil
}

// ApprovePromotion is the manager's approval.
func (s *PromotionServiceImpl) ApprovePromotion(ctx context.Context, promotionID string) (*primary.Promotion, error) {
	return s.TransitionPromotion(ctx, primary.TransitionPromotionRequest{
		PromotionID: promotionID,
		Action:      string(promotion.ActionManagerApprove),
	})
}

// RejectPromotion is the manager's rejection.
func (s *PromotionServiceImpl) RejectPromotion(ctx context.Context, promotionID, reason string) (*primary.Promotion, error) {
	return s.TransitionPromotion(ctx, primary.TransitionPromotionRequest{
		PromotionID: promotionID,
		Action:      string(promotion.ActionManagerReject),
		Reason:      reason,
	})
}

// AcceptPromotion is the employee's approval.
func (s *PromotionServiceImpl) AcceptPromotion(ctx context.Context, promotionID string) (*primary.Promotion, error) {
	return s.TransitionPromotion(ctx, primary.TransitionPromotionRequest{
		PromotionID: promotionID,
		Action:      string(promotion.ActionEmployeeApprove),
	})
}

// DeclinePromotion is the employee's rejection. Unlike the manager's, it
// does not require a reason.
func (s *PromotionServiceImpl) DeclinePromotion(ctx context.Context, promotionID, reason string) (*primary.Promotion, error) {
	return s.TransitionPromotion(ctx, primary.TransitionPromotionRequest{
		PromotionID: promotionID,
		Action:      string(promotion.ActionEmployeeReject),
		Reason:      reason,
	})
}

// GetPromotion retrieves a promotion by ID.
func (s *PromotionServiceImpl) GetPromotion(ctx context.Context, promotionID string) (*primary.Promotion, error) {
	record, err := s.promotionRepo.GetByID(ctx, promotionID)
	if err != nil {
		return nil, err
	}
	return promotionRecordToPrimary(record), nil
}

// ListPromotions lists promotions with optional filters.
func (s *PromotionServiceImpl) ListPromotions(ctx context.Context, filters primary.PromotionFilters) ([]*primary.Promotion, error) {
	if filters.Status != "" {
		if _, err := promotion.ParseStatus(filters.Status); err != nil {
			return nil, err
		}
	}

	records, err := s.promotionRepo.List(ctx, secondary.PromotionFilters{
		EmployeeID: filters.EmployeeID,
		ManagerID:  filters.ManagerID,
		Status:     filters.Status,
		Limit:      filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list promotions: %w", err)
	}

	promotions := make([]*primary.Promotion, 0, len(records))
	for _, r := range records {
		promotions = append(promotions, promotionRecordToPrimary(r))
	}
	return promotions, nil
}

// GetProgressSummary aggregates the progress records of a promotion.
func (s *PromotionServiceImpl) GetProgressSummary(ctx context.Context, promotionID string) (*primary.ProgressSummary, error) {
	record, err := s.promotionRepo.GetByID(ctx, promotionID)
	if err != nil {
		return nil, err
	}

	progressRecords, err := s.progressRepo.ListByPromotion(ctx, promotionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress records: %w", err)
	}
	records, err := recordsFromProgress(progressRecords)
	if err != nil {
		return nil, err
	}

	sum := progress.Summarize(records)
	return &primary.ProgressSummary{
		PromotionID:       record.ID,
		Status:            record.Status,
		Total:             sum.Total,
		FullyMastered:     sum.FullyMastered,
		MentorMastered:    sum.MentorMastered,
		EvaluatorMastered: sum.EvaluatorMastered,
		CarriedForward:    sum.CarriedForward,
		NotStarted:        sum.NotStarted,
		Percent:           sum.Percent,
		ReadyForEvaluator: sum.ReadyForEvaluator,
		ReadyToComplete:   sum.ReadyToComplete,
	}, nil
}

// GetCertificate returns the certificate of a promotion, or nil.
func (s *PromotionServiceImpl) GetCertificate(ctx context.Context, promotionID string) (*primary.Certificate, error) {
	if _, err := s.promotionRepo.GetByID(ctx, promotionID); err != nil {
		return nil, err
	}

	cert, err := s.certificateRepo.GetByPromotion(ctx, promotionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}
	if cert == nil {
		return nil, nil
	}
	return &primary.Certificate{
		ID:          cert.ID,
		PromotionID: cert.PromotionID,
		EmployeeID:  cert.EmployeeID,
		JobTitleID:  cert.JobTitleID,
		GradeID:     cert.GradeID,
		IssuedAt:    cert.IssuedAt,
	}, nil
}

var _ primary.PromotionService = (*PromotionServiceImpl)(nil)
