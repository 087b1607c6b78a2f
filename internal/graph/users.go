package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"tenant-reports/internal/domain/license"
	appErrors "tenant-reports/pkg/errors"
)

type userDTO struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	UserPrincipalName string `json:"userPrincipalName"`
	AccountEnabled    bool   `json:"accountEnabled"`
	AssignedLicenses  []struct {
		SkuID string `json:"skuId"`
	} `json:"assignedLicenses"`
}

func (u userDTO) toRecord() license.UserRecord {
	skus := make([]string, 0, len(u.AssignedLicenses))
	for _, l := range u.AssignedLicenses {
		skus = append(skus, l.SkuID)
	}
	return license.UserRecord{
		ID:            u.ID,
		DisplayName:   u.DisplayName,
		PrincipalName: u.UserPrincipalName,
		Enabled:       u.AccountEnabled,
		SKUIDs:        skus,
	}
}

// ListLicensedUsers fetches tenant users and keeps only those holding at
// least one assigned license. Graph cannot filter on assignedLicenses
// server-side, so unlicensed users are dropped after decoding and do not
// count against opts.MaxRecords.
func (c *Client) ListLicensedUsers(ctx context.Context, opts FetchOptions) ([]license.UserRecord, bool, error) {
	q := url.Values{}
	q.Set("$select", "id,displayName,userPrincipalName,accountEnabled,assignedLicenses")
	if opts.PageSize > 0 {
		q.Set("$top", fmt.Sprintf("%d", opts.PageSize))
	}
	firstURL := c.baseURL + "/users?" + q.Encode()

	var users []license.UserRecord
	decode := func(raw json.RawMessage) error {
		var dto userDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			return err
		}
		if len(dto.AssignedLicenses) == 0 {
			return nil
		}
		if opts.MaxRecords > 0 && len(users) >= opts.MaxRecords {
			return errStopPaging
		}
		users = append(users, dto.toRecord())
		return nil
	}

	_, truncated, err := c.fetchAll(ctx, firstURL, 0, decode)
	if err != nil {
		return nil, false, err
	}
	if len(users) == 0 {
		return nil, false, appErrors.NewSourceError("no licensed users found", appErrors.ErrNoRecords)
	}
	return users, truncated, nil
}
