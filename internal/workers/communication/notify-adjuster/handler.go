// internal/workers/communication/notify-adjuster/handler.go
package notifyadjuster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	awsclients "claims-workers/internal/common/aws"
	"claims-workers/internal/common/logger"
	"claims-workers/internal/common/validation"
	"claims-workers/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "notify-adjuster"
)

var (
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
)

// Interfaces over the AWS clients so tests can substitute fakes.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config    *Config
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
}

func NewHandler(config *Config, log logger.Logger) (*Handler, error) {
	sesClient, snsClient, err := awsclients.NewClients(context.Background(), config.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &Handler{
		config:    config,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
		sesClient: sesClient,
		snsClient: snsClient,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "NOTIFICATION_SEND_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	notificationID := uuid.New().String()
	sentAt := time.Now().UTC().Format(time.RFC3339)

	output := &Output{
		NotificationID: notificationID,
		Status:         StatusDisabled,
		SentAt:         sentAt,
	}

	if h.config.EmailEnabled {
		if !validation.ValidateEmail(input.AdjusterEmail) {
			return nil, fmt.Errorf("invalid adjuster email %q", input.AdjusterEmail)
		}
		if err := h.sendEmail(ctx, input); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"claimId": input.ClaimID,
				"email":   input.AdjusterEmail,
				"error":   err,
			})
			output.Status = StatusFailed
			return output, nil
		}
		output.EmailSent = true
		output.Status = StatusSent
	}

	// High-severity claims also fan out to the escalation topic.
	if h.config.SNSEnabled && h.config.SNSTopicARN != "" && escalates(input.Category) {
		if err := h.publishAlert(ctx, input); err != nil {
			h.logger.Warn("escalation alert failed", map[string]interface{}{
				"claimId": input.ClaimID,
				"error":   err,
			})
		} else {
			output.AlertPublished = true
			if output.Status == StatusDisabled {
				output.Status = StatusSent
			}
		}
	}

	h.logger.Info("adjuster notified", map[string]interface{}{
		"claimId":        input.ClaimID,
		"notificationId": notificationID,
		"status":         output.Status,
		"emailSent":      output.EmailSent,
		"alertPublished": output.AlertPublished,
	})

	return output, nil
}

func escalates(category models.SeverityCategory) bool {
	return category == models.CategorySevere || category == models.CategoryCatastrophic
}

func (h *Handler) sendEmail(ctx context.Context, input *Input) error {
	subject := fmt.Sprintf("Claim %s scope review: %s", input.ClaimID, input.Verdict)
	body := h.emailBody(input)

	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(h.config.EmailFrom),
		Destination: &types.Destination{
			ToAddresses: []string{input.AdjusterEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationSendFailed, err)
	}
	return nil
}

func (h *Handler) emailBody(input *Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Scope reconciliation results for claim %s\n\n", input.ClaimID)
	fmt.Fprintf(&b, "Carrier: %s\n", input.CarrierName)
	fmt.Fprintf(&b, "Compliance verdict: %s (%d%% estimated approval chance)\n", input.Verdict, input.ApprovalChance)
	fmt.Fprintf(&b, "Supplement requested: $%.2f\n", input.SupplementTotal)
	fmt.Fprintf(&b, "Damage severity: %s\n", input.Category)
	if len(input.CriticalZones) > 0 {
		fmt.Fprintf(&b, "Critical zones: %s\n", strings.Join(input.CriticalZones, ", "))
	}
	return b.String()
}

func (h *Handler) publishAlert(ctx context.Context, input *Input) error {
	message, err := json.Marshal(map[string]interface{}{
		"claimId":         input.ClaimID,
		"carrier":         input.CarrierName,
		"severity":        input.Category,
		"criticalZones":   input.CriticalZones,
		"supplementTotal": input.SupplementTotal,
	})
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}

	_, err = h.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(h.config.SNSTopicARN),
		Subject:  aws.String(fmt.Sprintf("High-severity claim %s", input.ClaimID)),
		Message:  aws.String(string(message)),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationSendFailed, err)
	}
	return nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
