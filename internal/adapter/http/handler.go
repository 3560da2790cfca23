package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/clubworks/clubcore/internal/app"
	"github.com/clubworks/clubcore/internal/domain"
)

// Services bundles the application services the API exposes.
type Services struct {
	Onboarding *app.OnboardingService
	Lifecycle  *app.LifecycleService
	History    *app.HistoryService
	Sequences  *app.SequenceService
}

// MemberResponse is the API representation of a member.
type MemberResponse struct {
	ID                     string `json:"id" doc:"Unique identifier"`
	ClubID                 string `json:"club_id" doc:"Owning club"`
	MemberNumber           string `json:"member_number" doc:"Club-assigned member number"`
	FirstName              string `json:"first_name" doc:"First name"`
	LastName               string `json:"last_name" doc:"Last name"`
	Status                 string `json:"status" doc:"Membership status"`
	StatusChangedAt        string `json:"status_changed_at,omitempty" doc:"When the current status took effect (ISO 8601)"`
	StatusChangedBy        string `json:"status_changed_by,omitempty" doc:"Actor of the last status change"`
	StatusChangeReason     string `json:"status_change_reason,omitempty" doc:"Reason for the last status change"`
	CancellationDate       string `json:"cancellation_date,omitempty" doc:"Date the membership ends (YYYY-MM-DD)"`
	CancellationReceivedAt string `json:"cancellation_received_at,omitempty" doc:"When the notice was received (ISO 8601)"`
	CreatedAt              string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt              string `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

const timeFormat = "2006-01-02T15:04:05Z"

func toMemberResponse(m domain.Member) MemberResponse {
	resp := MemberResponse{
		ID:                 m.ID,
		ClubID:             m.ClubID,
		MemberNumber:       m.MemberNumber,
		FirstName:          m.FirstName,
		LastName:           m.LastName,
		Status:             string(m.Status),
		StatusChangedBy:    m.StatusChangedBy,
		StatusChangeReason: m.StatusChangeReason,
		CreatedAt:          m.CreatedAt.Format(timeFormat),
		UpdatedAt:          m.UpdatedAt.Format(timeFormat),
	}
	if !m.StatusChangedAt.IsZero() {
		resp.StatusChangedAt = m.StatusChangedAt.Format(timeFormat)
	}
	if m.CancellationDate != nil {
		resp.CancellationDate = m.CancellationDate.Format(time.DateOnly)
	}
	if m.CancellationReceivedAt != nil {
		resp.CancellationReceivedAt = m.CancellationReceivedAt.Format(timeFormat)
	}
	return resp
}

// TransitionResponse is the API representation of an audit log entry.
type TransitionResponse struct {
	ID            string `json:"id" doc:"Unique identifier"`
	FromStatus    string `json:"from_status,omitempty" doc:"Status before the change; empty on the registration entry"`
	ToStatus      string `json:"to_status" doc:"Status after the change"`
	EffectiveDate string `json:"effective_date" doc:"Date the change took effect (YYYY-MM-DD)"`
	Reason        string `json:"reason,omitempty" doc:"Free-text reason"`
	ActorID       string `json:"actor_id" doc:"Who made the change"`
	LeftCategory  string `json:"left_category,omitempty" doc:"Exit classification, set on terminal entries"`
	CreatedAt     string `json:"created_at" doc:"Recording timestamp (ISO 8601)"`
}

func toTransitionResponse(tr domain.StatusTransition) TransitionResponse {
	return TransitionResponse{
		ID:            tr.ID,
		FromStatus:    string(tr.FromStatus),
		ToStatus:      string(tr.ToStatus),
		EffectiveDate: tr.EffectiveDate.Format(time.DateOnly),
		Reason:        tr.Reason,
		ActorID:       tr.ActorID,
		LeftCategory:  string(tr.LeftCategory),
		CreatedAt:     tr.CreatedAt.Format(timeFormat),
	}
}

// CounterResponse is the API representation of a sequence counter.
type CounterResponse struct {
	EntityType   string `json:"entity_type" doc:"What the counter numbers"`
	Prefix       string `json:"prefix" doc:"Prefix template; {YYYY} expands to the current year"`
	PadLength    int    `json:"pad_length" doc:"Zero-padding width"`
	CurrentValue int64  `json:"current_value" doc:"Last issued value"`
	YearReset    bool   `json:"year_reset" doc:"Restart numbering each year"`
}

func toCounterResponse(c domain.SequenceCounter) CounterResponse {
	return CounterResponse{
		EntityType:   c.EntityType,
		Prefix:       c.Prefix,
		PadLength:    c.PadLength,
		CurrentValue: c.CurrentValue,
		YearReset:    c.YearReset,
	}
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("invalid date, expected YYYY-MM-DD: " + value)
	}
	return &t, nil
}

// --- Register Member ---

type RegisterMemberInput struct {
	ClubID string `path:"clubID" doc:"Club ID"`
	Body   struct {
		FirstName        string `json:"first_name" minLength:"1" maxLength:"255" doc:"First name"`
		LastName         string `json:"last_name" minLength:"1" maxLength:"255" doc:"Last name"`
		JoinDate         string `json:"join_date,omitempty" doc:"Membership start date (YYYY-MM-DD); defaults to today"`
		MembershipTypeID string `json:"membership_type_id,omitempty" doc:"Membership type of the opening period"`
		ActorID          string `json:"actor_id" minLength:"1" doc:"Who registers the member"`
	}
}

type RegisterMemberOutput struct {
	Body MemberResponse
}

// --- Get Member ---

type GetMemberInput struct {
	ClubID   string `path:"clubID" doc:"Club ID"`
	MemberID string `path:"memberID" doc:"Member ID"`
}

type GetMemberOutput struct {
	Body MemberResponse
}

// --- Change Status ---

type ChangeStatusInput struct {
	ClubID   string `path:"clubID" doc:"Club ID"`
	MemberID string `path:"memberID" doc:"Member ID"`
	Body     struct {
		Status        string `json:"status" enum:"probation,active,dormant,suspended,left" doc:"Target status"`
		Reason        string `json:"reason,omitempty" doc:"Free-text reason"`
		ActorID       string `json:"actor_id" minLength:"1" doc:"Who makes the change"`
		EffectiveDate string `json:"effective_date,omitempty" doc:"Date the change takes effect (YYYY-MM-DD); defaults to today"`
		LeftCategory  string `json:"left_category,omitempty" enum:",voluntary,involuntary,deceased,other" doc:"Exit classification when the target is left"`
	}
}

type ChangeStatusOutput struct {
	Body MemberResponse
}

// --- Preview Change ---

type PreviewResponse struct {
	MemberID      string           `json:"member_id" doc:"Member the change applies to"`
	FromStatus    string           `json:"from_status" doc:"Current status"`
	ToStatus      string           `json:"to_status" doc:"Target status"`
	EffectiveDate string           `json:"effective_date" doc:"Date the change would take effect (YYYY-MM-DD)"`
	Reason        string           `json:"reason,omitempty" doc:"Free-text reason"`
	LeftCategory  string           `json:"left_category,omitempty" doc:"Exit classification"`
	ClosesPeriod  bool             `json:"closes_period" doc:"Whether the change would close the open membership period"`
	ClosingPeriod *ClosingPeriodVM `json:"closing_period,omitempty" doc:"The period that would be closed"`
}

// ClosingPeriodVM summarizes the membership period a change would close.
type ClosingPeriodVM struct {
	ID       string `json:"id" doc:"Period ID"`
	JoinDate string `json:"join_date" doc:"Period start date (YYYY-MM-DD)"`
}

type PreviewChangeOutput struct {
	Body PreviewResponse
}

// --- Cancellation ---

type SetCancellationInput struct {
	ClubID   string `path:"clubID" doc:"Club ID"`
	MemberID string `path:"memberID" doc:"Member ID"`
	Body     struct {
		CancellationDate string `json:"cancellation_date" doc:"Date the membership ends (YYYY-MM-DD)"`
		ReceivedAt       string `json:"received_at,omitempty" doc:"When the notice was received (ISO 8601); defaults to now"`
		ActorID          string `json:"actor_id" minLength:"1" doc:"Who records the notice"`
		Reason           string `json:"reason,omitempty" doc:"Free-text reason"`
	}
}

type SetCancellationOutput struct {
	Body MemberResponse
}

type RevokeCancellationInput struct {
	ClubID   string `path:"clubID" doc:"Club ID"`
	MemberID string `path:"memberID" doc:"Member ID"`
	Body     struct {
		ActorID string `json:"actor_id" minLength:"1" doc:"Who revokes the notice"`
		Reason  string `json:"reason,omitempty" doc:"Free-text reason"`
	}
}

type RevokeCancellationOutput struct {
	Body MemberResponse
}

// --- Bulk Change ---

type BulkChangeInput struct {
	ClubID string `path:"clubID" doc:"Club ID"`
	Body   struct {
		MemberIDs    []string `json:"member_ids" minItems:"1" doc:"Members to change, processed in order"`
		Status       string   `json:"status" enum:"probation,active,dormant,suspended,left" doc:"Target status"`
		Reason       string   `json:"reason,omitempty" doc:"Free-text reason"`
		ActorID      string   `json:"actor_id" minLength:"1" doc:"Who makes the change"`
		LeftCategory string   `json:"left_category,omitempty" enum:",voluntary,involuntary,deceased,other" doc:"Exit classification when the target is left"`
	}
}

type BulkChangeResponse struct {
	Updated []string       `json:"updated" doc:"Members changed, in input order"`
	Skipped []SkippedEntry `json:"skipped" doc:"Members not changed, with reasons"`
}

// SkippedEntry explains one member a bulk change left untouched.
type SkippedEntry struct {
	MemberID string `json:"member_id" doc:"Member ID"`
	Reason   string `json:"reason" doc:"Why the change was skipped"`
}

type BulkChangeOutput struct {
	Body BulkChangeResponse
}

// --- History ---

type ListHistoryInput struct {
	ClubID   string `path:"clubID" doc:"Club ID"`
	MemberID string `path:"memberID" doc:"Member ID"`
}

type ListHistoryOutput struct {
	Body []TransitionResponse
}

type UpdateTransitionInput struct {
	ClubID       string `path:"clubID" doc:"Club ID"`
	MemberID     string `path:"memberID" doc:"Member ID"`
	TransitionID string `path:"transitionID" doc:"Audit entry ID"`
	Body         struct {
		Reason        *string `json:"reason,omitempty" doc:"New reason; omit to keep"`
		EffectiveDate *string `json:"effective_date,omitempty" doc:"New effective date (YYYY-MM-DD); omit to keep"`
		LeftCategory  *string `json:"left_category,omitempty" enum:",voluntary,involuntary,deceased,other" doc:"New exit classification; omit to keep"`
		ActorID       string  `json:"actor_id" minLength:"1" doc:"Who edits the entry"`
	}
}

type UpdateTransitionOutput struct {
	Body TransitionResponse
}

type DeleteTransitionInput struct {
	ClubID       string `path:"clubID" doc:"Club ID"`
	MemberID     string `path:"memberID" doc:"Member ID"`
	TransitionID string `path:"transitionID" doc:"Audit entry ID"`
	ActorID      string `query:"actor_id" required:"true" doc:"Who deletes the entry"`
}

type DeleteTransitionOutput struct{}

// --- Sequences ---

type NextSequenceInput struct {
	ClubID     string `path:"clubID" doc:"Club ID"`
	EntityType string `path:"entityType" doc:"What the counter numbers, e.g. member"`
}

type NextSequenceOutput struct {
	Body struct {
		Value string `json:"value" doc:"Freshly issued formatted number"`
	}
}

type ListSequencesInput struct {
	ClubID string `path:"clubID" doc:"Club ID"`
}

type ListSequencesOutput struct {
	Body []CounterResponse
}

type PreviewSequenceInput struct {
	ClubID       string `path:"clubID" doc:"Club ID"`
	Prefix       string `query:"prefix" required:"false" doc:"Prefix template; {YYYY} expands to the current year"`
	CurrentValue int64  `query:"current_value" required:"false" default:"0" doc:"Current counter value"`
	PadLength    int    `query:"pad_length" required:"false" default:"4" doc:"Zero-padding width"`
}

type PreviewSequenceOutput struct {
	Body struct {
		Value string `json:"value" doc:"What the next number would look like"`
	}
}

type ConfigureSequenceInput struct {
	ClubID     string `path:"clubID" doc:"Club ID"`
	EntityType string `path:"entityType" doc:"What the counter numbers, e.g. member"`
	Body       struct {
		Prefix    string `json:"prefix,omitempty" doc:"Prefix template; {YYYY} expands to the current year"`
		PadLength int    `json:"pad_length,omitempty" minimum:"0" maximum:"18" doc:"Zero-padding width; defaults to 4"`
		YearReset bool   `json:"year_reset,omitempty" doc:"Restart numbering each year"`
	}
}

type ConfigureSequenceOutput struct {
	Body CounterResponse
}

type DeleteSequenceInput struct {
	ClubID     string `path:"clubID" doc:"Club ID"`
	EntityType string `path:"entityType" doc:"What the counter numbers, e.g. member"`
}

type DeleteSequenceOutput struct{}

// Register adds all club membership API routes to the Huma API.
func Register(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID: "register-member",
		Method:      http.MethodPost,
		Path:        "/api/v1/clubs/{clubID}/members",
		Summary:     "Register a new member",
		Tags:        []string{"Members"},
	}, func(ctx context.Context, input *RegisterMemberInput) (*RegisterMemberOutput, error) {
		joinDate, err := parseDate(input.Body.JoinDate)
		if err != nil {
			return nil, err
		}

		member, err := svc.Onboarding.Register(ctx, app.RegisterMemberParams{
			ClubID:           input.ClubID,
			FirstName:        input.Body.FirstName,
			LastName:         input.Body.LastName,
			JoinDate:         joinDate,
			MembershipTypeID: input.Body.MembershipTypeID,
			ActorID:          input.Body.ActorID,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &RegisterMemberOutput{Body: toMemberResponse(member)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-member",
		Method:      http.MethodGet,
		Path:        "/api/v1/clubs/{clubID}/members/{memberID}",
		Summary:     "Get a member by ID",
		Tags:        []string{"Members"},
	}, func(ctx context.Context, input *GetMemberInput) (*GetMemberOutput, error) {
		member, err := svc.Lifecycle.GetMember(ctx, input.ClubID, input.MemberID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetMemberOutput{Body: toMemberResponse(member)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "change-member-status",
		Method:      http.MethodPost,
		Path:        "/api/v1/clubs/{clubID}/members/{memberID}/status",
		Summary:     "Change a member's status",
		Tags:        []string{"Members"},
	}, func(ctx context.Context, input *ChangeStatusInput) (*ChangeStatusOutput, error) {
		effective, err := parseDate(input.Body.EffectiveDate)
		if err != nil {
			return nil, err
		}

		member, err := svc.Lifecycle.ChangeStatus(ctx, app.ChangeStatusParams{
			ClubID:        input.ClubID,
			MemberID:      input.MemberID,
			To:            domain.Status(input.Body.Status),
			Reason:        input.Body.Reason,
			ActorID:       input.Body.ActorID,
			EffectiveDate: effective,
			LeftCategory:  domain.LeftCategory(input.Body.LeftCategory),
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ChangeStatusOutput{Body: toMemberResponse(member)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "preview-member-status-change",
		Method:      http.MethodPost,
		Path:        "/api/v1/clubs/{clubID}/members/{memberID}/status/preview",
		Summary:     "Preview a status change without applying it",
		Tags:        []string{"Members"},
	}, func(ctx context.Context, input *ChangeStatusInput) (*PreviewChangeOutput, error) {
		effective, err := parseDate(input.Body.EffectiveDate)
		if err != nil {
			return nil, err
		}

		preview, err := svc.Lifecycle.PreviewChangeStatus(ctx, app.ChangeStatusParams{
			ClubID:        input.ClubID,
			MemberID:      input.MemberID,
			To:            domain.Status(input.Body.Status),
			Reason:        input.Body.Reason,
			ActorID:       input.Body.ActorID,
			EffectiveDate: effective,
			LeftCategory:  domain.LeftCategory(input.Body.LeftCategory),
		})
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := PreviewResponse{
			MemberID:      preview.MemberID,
			FromStatus:    string(preview.From),
			ToStatus:      string(preview.To),
			EffectiveDate: preview.EffectiveDate.Format(time.DateOnly),
			Reason:        preview.Reason,
			LeftCategory:  string(preview.LeftCategory),
			ClosesPeriod:  preview.ClosesPeriod,
		}
		if preview.ClosingPeriod != nil {
			resp.ClosingPeriod = &ClosingPeriodVM{
				ID:       preview.ClosingPeriod.ID,
				JoinDate: preview.ClosingPeriod.JoinDate.Format(time.DateOnly),
			}
		}
		return &PreviewChangeOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-member-cancellation",
		Method:      http.MethodPut,
		Path:        "/api/v1/clubs/{clubID}/members/{memberID}/cancellation",
		Summary:     "Record a cancellation notice",
		Tags:        []string{"Members"},
	}, func(ctx context.Context, input *SetCancellationInput) (*SetCancellationOutput, error) {
		cancelDate, err := parseDate(input.Body.CancellationDate)
		if err != nil {
			return nil, err
		}
		if cancelDate == nil {
			return nil, huma.Error422UnprocessableEntity("cancellation_date is required")
		}

		var receivedAt *time.Time
		if input.Body.ReceivedAt != "" {
			t, err := time.Parse(time.RFC3339, input.Body.ReceivedAt)
			if err != nil {
				return nil, huma.Error422UnprocessableEntity("invalid received_at, expected ISO 8601: " + input.Body.ReceivedAt)
			}
			receivedAt = &t
		}

		member, err := svc.Lifecycle.SetCancellation(ctx, app.SetCancellationParams{
			ClubID:           input.ClubID,
			MemberID:         input.MemberID,
			CancellationDate: *cancelDate,
			ReceivedAt:       receivedAt,
			ActorID:          input.Body.ActorID,
			Reason:           input.Body.Reason,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &SetCancellationOutput{Body: toMemberResponse(member)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "revoke-member-cancellation",
		Method:      http.MethodPost,
		Path:        "/api/v1/clubs/{clubID}/members/{memberID}/cancellation/revoke",
		Summary:     "Revoke a recorded cancellation notice",
		Tags:        []string{"Members"},
	}, func(ctx context.Context, input *RevokeCancellationInput) (*RevokeCancellationOutput, error) {
		member, err := svc.Lifecycle.RevokeCancellation(ctx, input.ClubID, input.MemberID, input.Body.ActorID, input.Body.Reason)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &RevokeCancellationOutput{Body: toMemberResponse(member)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "bulk-change-member-status",
		Method:      http.MethodPost,
		Path:        "/api/v1/clubs/{clubID}/members/status/bulk",
		Summary:     "Change the status of several members",
		Tags:        []string{"Members"},
	}, func(ctx context.Context, input *BulkChangeInput) (*BulkChangeOutput, error) {
		result, err := svc.Lifecycle.BulkChangeStatus(ctx, app.BulkChangeParams{
			ClubID:       input.ClubID,
			MemberIDs:    input.Body.MemberIDs,
			To:           domain.Status(input.Body.Status),
			Reason:       input.Body.Reason,
			ActorID:      input.Body.ActorID,
			LeftCategory: domain.LeftCategory(input.Body.LeftCategory),
		})
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := BulkChangeResponse{
			Updated: result.Updated,
			Skipped: make([]SkippedEntry, len(result.Skipped)),
		}
		if resp.Updated == nil {
			resp.Updated = []string{}
		}
		for i, s := range result.Skipped {
			resp.Skipped[i] = SkippedEntry{MemberID: s.MemberID, Reason: s.Reason}
		}
		return &BulkChangeOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-member-history",
		Method:      http.MethodGet,
		Path:        "/api/v1/clubs/{clubID}/members/{memberID}/history",
		Summary:     "List a member's status history",
		Tags:        []string{"History"},
	}, func(ctx context.Context, input *ListHistoryInput) (*ListHistoryOutput, error) {
		entries, err := svc.History.List(ctx, input.ClubID, input.MemberID)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]TransitionResponse, len(entries))
		for i, tr := range entries {
			resp[i] = toTransitionResponse(tr)
		}
		return &ListHistoryOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-history-entry",
		Method:      http.MethodPatch,
		Path:        "/api/v1/clubs/{clubID}/members/{memberID}/history/{transitionID}",
		Summary:     "Edit the metadata of a history entry",
		Tags:        []string{"History"},
	}, func(ctx context.Context, input *UpdateTransitionInput) (*UpdateTransitionOutput, error) {
		params := app.UpdateTransitionParams{
			ClubID:       input.ClubID,
			MemberID:     input.MemberID,
			TransitionID: input.TransitionID,
			Reason:       input.Body.Reason,
			ActorID:      input.Body.ActorID,
		}
		if input.Body.EffectiveDate != nil {
			effective, err := parseDate(*input.Body.EffectiveDate)
			if err != nil {
				return nil, err
			}
			params.EffectiveDate = effective
		}
		if input.Body.LeftCategory != nil {
			category := domain.LeftCategory(*input.Body.LeftCategory)
			params.LeftCategory = &category
		}

		transition, err := svc.History.Update(ctx, params)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &UpdateTransitionOutput{Body: toTransitionResponse(transition)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-history-entry",
		Method:        http.MethodDelete,
		Path:          "/api/v1/clubs/{clubID}/members/{memberID}/history/{transitionID}",
		Summary:       "Soft-delete a history entry",
		Tags:          []string{"History"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *DeleteTransitionInput) (*DeleteTransitionOutput, error) {
		if err := svc.History.SoftDelete(ctx, input.ClubID, input.MemberID, input.TransitionID, input.ActorID); err != nil {
			return nil, toHumaError(err)
		}
		return &DeleteTransitionOutput{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "next-sequence-number",
		Method:      http.MethodPost,
		Path:        "/api/v1/clubs/{clubID}/sequences/{entityType}/next",
		Summary:     "Issue the next sequence number",
		Tags:        []string{"Sequences"},
	}, func(ctx context.Context, input *NextSequenceInput) (*NextSequenceOutput, error) {
		value, err := svc.Sequences.Next(ctx, input.ClubID, input.EntityType)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &NextSequenceOutput{}
		out.Body.Value = value
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-sequences",
		Method:      http.MethodGet,
		Path:        "/api/v1/clubs/{clubID}/sequences",
		Summary:     "List a club's sequence counters",
		Tags:        []string{"Sequences"},
	}, func(ctx context.Context, input *ListSequencesInput) (*ListSequencesOutput, error) {
		counters, err := svc.Sequences.List(ctx, input.ClubID)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]CounterResponse, len(counters))
		for i, c := range counters {
			resp[i] = toCounterResponse(c)
		}
		return &ListSequencesOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "preview-sequence-number",
		Method:      http.MethodGet,
		Path:        "/api/v1/clubs/{clubID}/sequences/preview",
		Summary:     "Preview a sequence number format",
		Tags:        []string{"Sequences"},
	}, func(ctx context.Context, input *PreviewSequenceInput) (*PreviewSequenceOutput, error) {
		out := &PreviewSequenceOutput{}
		out.Body.Value = svc.Sequences.Preview(input.Prefix, input.CurrentValue, input.PadLength)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "configure-sequence",
		Method:      http.MethodPut,
		Path:        "/api/v1/clubs/{clubID}/sequences/{entityType}",
		Summary:     "Create or reconfigure a sequence counter",
		Tags:        []string{"Sequences"},
	}, func(ctx context.Context, input *ConfigureSequenceInput) (*ConfigureSequenceOutput, error) {
		counter, err := svc.Sequences.Configure(ctx, domain.SequenceCounter{
			ClubID:     input.ClubID,
			EntityType: input.EntityType,
			Prefix:     input.Body.Prefix,
			PadLength:  input.Body.PadLength,
			YearReset:  input.Body.YearReset,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ConfigureSequenceOutput{Body: toCounterResponse(counter)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-sequence",
		Method:        http.MethodDelete,
		Path:          "/api/v1/clubs/{clubID}/sequences/{entityType}",
		Summary:       "Delete an unused sequence counter",
		Tags:          []string{"Sequences"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *DeleteSequenceInput) (*DeleteSequenceOutput, error) {
		if err := svc.Sequences.Delete(ctx, input.ClubID, input.EntityType); err != nil {
			return nil, toHumaError(err)
		}
		return &DeleteSequenceOutput{}, nil
	})
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(err error) error {
	switch {
	case errors.Is(err, domain.ErrMemberNotFound):
		return huma.Error404NotFound("member not found")
	case errors.Is(err, domain.ErrTransitionNotFound):
		return huma.Error404NotFound("history entry not found")
	case errors.Is(err, domain.ErrCounterNotFound):
		return huma.Error404NotFound("sequence counter not found")
	case errors.Is(err, domain.ErrConflict):
		return huma.Error409Conflict("concurrent modification, retry the request")
	case errors.Is(err, domain.ErrCounterInUse):
		return huma.Error409Conflict("sequence counter has already issued numbers")
	}

	var invalidErr *domain.InvalidTransitionError
	if errors.As(err, &invalidErr) {
		return huma.Error422UnprocessableEntity(invalidErr.Error())
	}

	var cancelErr *domain.CancellationStateError
	if errors.As(err, &cancelErr) {
		return huma.Error409Conflict(cancelErr.Error())
	}

	var guardErr *domain.HistoryGuardError
	if errors.As(err, &guardErr) {
		return huma.Error409Conflict(guardErr.Error())
	}

	return huma.Error500InternalServerError("internal server error")
}
