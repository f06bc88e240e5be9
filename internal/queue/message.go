package queue

import (
	"fmt"
	"strings"
)

// CampaignJob is the broker payload telling the delivery worker to drain a
// campaign's pending recipients.
type CampaignJob struct {
	CampaignID    string `json:"campaignId"`
	OrgID         string `json:"orgId"`
	CorrelationID string `json:"correlationId,omitempty"`
}

func (j CampaignJob) Validate() error {
	if strings.TrimSpace(j.CampaignID) == "" {
		return fmt.Errorf("campaignId is required")
	}
	if strings.TrimSpace(j.OrgID) == "" {
		return fmt.Errorf("orgId is required")
	}
	return nil
}
