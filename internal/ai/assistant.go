package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/mira/volunteer-hub/internal/models"
)

// Assistant answers free-text questions for volunteers and organizations.
// Each answer is grounded in a context summary built from the caller's own
// records; the model never sees another party's data.
type Assistant struct {
	client *OllamaClient
}

func NewAssistant(client *OllamaClient) *Assistant {
	return &Assistant{client: client}
}

// AnswerVolunteer answers a volunteer's question against their applications
// (with engine-derived statuses already filled in by the caller).
func (a *Assistant) AnswerVolunteer(ctx context.Context, userName, message string, apps []models.DerivedApplication) (string, error) {
	var sb strings.Builder
	for _, app := range apps {
		verified := 0
		for _, p := range app.Proofs {
			if p.Verified {
				verified++
			}
		}
		hours := "unknown"
		if app.Hours != nil {
			hours = fmt.Sprintf("%g", *app.Hours)
		}
		fmt.Fprintf(&sb, "Opportunity: %s, Organization: %s, Category: %s, Date: %s, Hours: %s, Featured: %t, Status: %s, Verified proofs: %d\n",
			app.Title, app.Organization, app.Category, app.Date, hours, app.Featured, app.DerivedStatus, verified)
	}
	summary := sb.String()
	if summary == "" {
		summary = "No opportunities found."
	}

	prompt := fmt.Sprintf(`You are a friendly assistant for a volunteer-matching platform.
Answer the volunteer's question using ONLY the data below. Be concise and encouraging.
If the data doesn't contain the answer, say so.

VOLUNTEER: %s
THEIR APPLICATIONS:
%s

QUESTION: %s`, userName, summary, message)

	return a.client.GenerateCompletion(ctx, prompt, false)
}

// OrgApplicant is one applicant row fed into the organization assistant.
type OrgApplicant struct {
	Opportunity string
	Applicant   string
	Status      string
}

// AnswerOrganization answers an organization's question against its own
// opportunities and the applications received for them.
func (a *Assistant) AnswerOrganization(ctx context.Context, orgName, message string, opps []models.Opportunity, applicants []OrgApplicant) (string, error) {
	var sb strings.Builder
	for _, o := range opps {
		hours := "unknown"
		if o.Hours != nil {
			hours = fmt.Sprintf("%g", *o.Hours)
		}
		fmt.Fprintf(&sb, "Opportunity: %s, Category: %s, Date: %s, Hours: %s, Featured: %t\n",
			o.Title, o.Category, o.Date, hours, o.Featured)
		if o.Description != "" {
			fmt.Fprintf(&sb, "  About: %s\n", HTMLToText(o.Description))
		}
	}
	for _, ap := range applicants {
		fmt.Fprintf(&sb, "Applicant: %s applied to %s (status %s)\n", ap.Applicant, ap.Opportunity, ap.Status)
	}
	summary := sb.String()
	if summary == "" {
		summary = "No opportunities posted yet."
	}

	prompt := fmt.Sprintf(`You are an assistant for organizations on a volunteer-matching platform.
Answer the organization's question using ONLY the data below. Be concise and factual.

ORGANIZATION: %s
THEIR DATA:
%s

QUESTION: %s`, orgName, summary, message)

	return a.client.GenerateCompletion(ctx, prompt, false)
}
