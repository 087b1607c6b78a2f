package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"tenant-reports/internal/domain/device"
)

type auditEventDTO struct {
	ActivityDateTime string `json:"activityDateTime"`
	Actor            struct {
		UserPrincipalName      string `json:"userPrincipalName"`
		ApplicationDisplayName string `json:"applicationDisplayName"`
	} `json:"actor"`
	Resources []struct {
		DisplayName string `json:"displayName"`
	} `json:"resources"`
}

// ListDeletedDevices reads the management audit trail for device deletions
// since the cutoff. This is a secondary lookup: the history report logs a
// warning and continues when it fails.
func (c *Client) ListDeletedDevices(ctx context.Context, since time.Time) ([]device.DeletedRecord, error) {
	q := url.Values{}
	q.Set("$filter", fmt.Sprintf(
		"activityType eq 'Delete ManagedDevice' and activityDateTime ge %s",
		since.UTC().Format(time.RFC3339)))
	firstURL := c.baseURL + "/deviceManagement/auditEvents?" + q.Encode()

	var deleted []device.DeletedRecord
	decode := func(raw json.RawMessage) error {
		var dto auditEventDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			return err
		}
		name := "(unknown device)"
		if len(dto.Resources) > 0 && dto.Resources[0].DisplayName != "" {
			name = dto.Resources[0].DisplayName
		}
		actor := dto.Actor.UserPrincipalName
		if actor == "" {
			actor = dto.Actor.ApplicationDisplayName
		}
		at := parseGraphTime(dto.ActivityDateTime)
		if at == nil {
			return nil
		}
		deleted = append(deleted, device.DeletedRecord{
			DeviceName: name,
			DeletedAt:  *at,
			Actor:      actor,
		})
		return nil
	}

	if _, _, err := c.fetchAll(ctx, firstURL, 0, decode); err != nil {
		return nil, err
	}
	return deleted, nil
}
