package calendarsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nekogravitycat/partybus-booking-backend/internal/config"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/serviceusage/v1"
)

const calendarAPIService = "calendar-json.googleapis.com"

// GoogleProvider talks to Google Calendar with a service account.
type GoogleProvider struct {
	calendar  *calendar.Service
	usage     *serviceusage.Service
	projectID string
}

// NewGoogleProvider builds the Calendar and Service Usage clients from the
// configured service account key. When cfg.Impersonate is set the account acts
// as that workspace user.
func NewGoogleProvider(ctx context.Context, cfg config.CalendarConfig) (*GoogleProvider, error) {
	key, err := cfg.LoadServiceAccountKey()
	if err != nil {
		return nil, err
	}

	jwtCfg, err := google.JWTConfigFromJSON(key, calendar.CalendarScope, serviceusage.CloudPlatformReadOnlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account key: %w", err)
	}
	jwtCfg.Subject = cfg.Impersonate
	client := jwtCfg.Client(ctx)

	cal, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client: %w", err)
	}
	usage, err := serviceusage.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create service usage client: %w", err)
	}

	projectID := cfg.ProjectID
	if projectID == "" {
		var meta struct {
			ProjectID string `json:"project_id"`
		}
		if err := json.Unmarshal(key, &meta); err == nil {
			projectID = meta.ProjectID
		}
	}

	return &GoogleProvider{calendar: cal, usage: usage, projectID: projectID}, nil
}

// Preflight fails with an operator checklist when the Calendar API is disabled for the project.
func (p *GoogleProvider) Preflight(ctx context.Context) error {
	if p.projectID == "" {
		return nil
	}
	name := fmt.Sprintf("projects/%s/services/%s", p.projectID, calendarAPIService)
	svc, err := p.usage.Services.Get(name).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("check calendar api state: %w", err)
	}
	if svc.State != "ENABLED" {
		return errors.New(disabledChecklist(p.projectID))
	}
	return nil
}

func disabledChecklist(projectID string) string {
	return fmt.Sprintf("The Google Calendar API is not enabled for project %q.\n"+
		"1. Open https://console.cloud.google.com/apis/library/%s?project=%s\n"+
		"2. Click ENABLE.\n"+
		"3. Retry the calendar sync for the driver.", projectID, calendarAPIService, projectID)
}

func (p *GoogleProvider) CreateCalendar(ctx context.Context, summary, timezone, granteeEmail string) (string, error) {
	created, err := p.calendar.Calendars.Insert(&calendar.Calendar{
		Summary:     summary,
		Description: "Trip calendar for " + summary,
		TimeZone:    timezone,
	}).Context(ctx).Do()
	if err != nil {
		return "", err
	}

	_, err = p.calendar.Acl.Insert(created.Id, &calendar.AclRule{
		Role:  "writer",
		Scope: &calendar.AclRuleScope{Type: "user", Value: granteeEmail},
	}).Context(ctx).Do()
	if err != nil {
		// Unshared calendars are useless to the driver.
		_ = p.calendar.Calendars.Delete(created.Id).Context(context.WithoutCancel(ctx)).Do()
		return "", err
	}
	return created.Id, nil
}

func (p *GoogleProvider) CreateEvent(ctx context.Context, calendarID string, e Event) (string, error) {
	var overrides []*calendar.EventReminder
	if e.PopupReminderMinutes > 0 {
		overrides = append(overrides, &calendar.EventReminder{Method: "popup", Minutes: e.PopupReminderMinutes})
	}
	if e.EmailReminderMinutes > 0 {
		overrides = append(overrides, &calendar.EventReminder{Method: "email", Minutes: e.EmailReminderMinutes})
	}

	created, err := p.calendar.Events.Insert(calendarID, &calendar.Event{
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
		Start:       &calendar.EventDateTime{DateTime: e.Start.Format(time.RFC3339), TimeZone: e.Timezone},
		End:         &calendar.EventDateTime{DateTime: e.End.Format(time.RFC3339), TimeZone: e.Timezone},
		ColorId:     e.ColorID,
		Reminders: &calendar.EventReminders{
			UseDefault:      false,
			Overrides:       overrides,
			ForceSendFields: []string{"UseDefault"},
		},
	}).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return created.Id, nil
}

func (p *GoogleProvider) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	err := p.calendar.Events.Delete(calendarID, eventID).Context(ctx).Do()
	if isGone(err) {
		return ErrRemoteNotFound
	}
	return err
}

func isGone(err error) bool {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return false
	}
	return gErr.Code == http.StatusNotFound || gErr.Code == http.StatusGone
}

// remoteMessage prefers the upstream API message over the wrapped error text.
func remoteMessage(err error) string {
	if err == nil {
		return ""
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) && gErr.Message != "" {
		return gErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "unknown calendar error; check the service account key, its delegation and the Calendar API state"
}
