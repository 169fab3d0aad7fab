package api

import (
	"context"

	"github.com/nhle/maildeck/internal/model"
)

// EmailContent is the subject/body/sender triple the AI endpoints score.
type EmailContent struct {
	EmailID int64  `json:"email_id,omitempty"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`
	Sender  string `json:"sender,omitempty"`
}

func contentOf(e model.EmailMessage) EmailContent {
	return EmailContent{
		EmailID: e.ID,
		Subject: e.Subject,
		Body:    e.Body,
		Sender:  e.Sender,
	}
}

type priorityResponse struct {
	Priority string `json:"priority"`
}

// DetectPriority asks the backend to classify a message's priority.
func (c *Client) DetectPriority(ctx context.Context, email model.EmailMessage) (string, error) {
	var resp priorityResponse
	if err := c.post(ctx, "/ai/detect-priority/", contentOf(email), &resp); err != nil {
		return "", err
	}
	return resp.Priority, nil
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

// Summarize returns an AI-generated summary of the message.
func (c *Client) Summarize(ctx context.Context, email model.EmailMessage) (string, error) {
	var resp summaryResponse
	if err := c.post(ctx, "/ai/summarize/", contentOf(email), &resp); err != nil {
		return "", err
	}
	return resp.Summary, nil
}

type replyRequest struct {
	EmailContent
	Tone    string `json:"tone,omitempty"`
	Context string `json:"context,omitempty"`
}

type replyResponse struct {
	Reply string `json:"reply"`
}

// GenerateReply returns an AI-drafted reply to the message. Tone is a
// backend-defined hint ("professional" when empty).
func (c *Client) GenerateReply(
	ctx context.Context,
	email model.EmailMessage,
	tone string,
) (string, error) {
	var resp replyResponse
	req := replyRequest{EmailContent: contentOf(email), Tone: tone}
	if err := c.post(ctx, "/ai/generate-reply/", req, &resp); err != nil {
		return "", err
	}
	return resp.Reply, nil
}

type batchAnalyzeRequest struct {
	Emails []EmailContent `json:"emails"`
}

// BatchPriority is one entry of a batch-analyze response.
type BatchPriority struct {
	EmailID  int64  `json:"email_id"`
	Priority string `json:"priority"`
}

type batchAnalyzeResponse struct {
	Results []BatchPriority `json:"results"`
}

// BatchAnalyze classifies priorities for a set of messages in one call.
func (c *Client) BatchAnalyze(
	ctx context.Context,
	emails []model.EmailMessage,
) ([]BatchPriority, error) {
	req := batchAnalyzeRequest{Emails: make([]EmailContent, 0, len(emails))}
	for _, e := range emails {
		req.Emails = append(req.Emails, contentOf(e))
	}

	var resp batchAnalyzeResponse
	if err := c.post(ctx, "/ai/batch-analyze/", req, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}
