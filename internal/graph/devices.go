package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"tenant-reports/internal/domain/device"
	appErrors "tenant-reports/pkg/errors"
)

type managedDeviceDTO struct {
	ID                        string `json:"id"`
	DeviceName                string `json:"deviceName"`
	SerialNumber              string `json:"serialNumber"`
	Model                     string `json:"model"`
	Manufacturer              string `json:"manufacturer"`
	OperatingSystem           string `json:"operatingSystem"`
	OSVersion                 string `json:"osVersion"`
	ComplianceState           string `json:"complianceState"`
	ManagedDeviceOwnerType    string `json:"managedDeviceOwnerType"`
	DeviceCategoryDisplayName string `json:"deviceCategoryDisplayName"`
	DeviceEnrollmentType      string `json:"deviceEnrollmentType"`
	UserPrincipalName         string `json:"userPrincipalName"`
	LastSyncDateTime          string `json:"lastSyncDateTime"`
	EnrolledDateTime          string `json:"enrolledDateTime"`
}

func (d managedDeviceDTO) toRecord() device.Record {
	return device.Record{
		ID:              d.ID,
		DeviceName:      d.DeviceName,
		SerialNumber:    strings.TrimSpace(d.SerialNumber),
		Model:           optional(d.Model),
		Manufacturer:    optional(d.Manufacturer),
		OperatingSystem: optional(d.OperatingSystem),
		OSVersion:       optional(d.OSVersion),
		ComplianceState: device.ParseComplianceState(d.ComplianceState),
		OwnerType:       device.ParseOwnerType(d.ManagedDeviceOwnerType),
		Category:        optional(d.DeviceCategoryDisplayName),
		EnrollmentType:  strings.TrimSpace(d.DeviceEnrollmentType),
		PrimaryUser:     optional(d.UserPrincipalName),
		LastSyncAt:      parseGraphTime(d.LastSyncDateTime),
		EnrolledAt:      parseGraphTime(d.EnrolledDateTime),
	}
}

// osFilterPredicate renders the allow-list as a server-side $filter clause,
// e.g. operatingSystem eq 'Windows' or operatingSystem eq 'Android'.
func osFilterPredicate(oses []string) string {
	clauses := make([]string, 0, len(oses))
	for _, os := range oses {
		os = strings.TrimSpace(os)
		if os == "" {
			continue
		}
		clauses = append(clauses, fmt.Sprintf("operatingSystem eq '%s'", strings.ReplaceAll(os, "'", "''")))
	}
	return strings.Join(clauses, " or ")
}

func (c *Client) devicesURL(opts FetchOptions, extraFilter string) string {
	q := url.Values{}
	if opts.PageSize > 0 {
		q.Set("$top", fmt.Sprintf("%d", opts.PageSize))
	}
	filter := osFilterPredicate(opts.OSFilter)
	if extraFilter != "" {
		if filter != "" {
			filter = fmt.Sprintf("(%s) and %s", filter, extraFilter)
		} else {
			filter = extraFilter
		}
	}
	if filter != "" {
		q.Set("$filter", filter)
	}
	u := c.baseURL + "/deviceManagement/managedDevices"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// ListManagedDevices fetches the full managed-device inventory. The bool
// result reports truncation by opts.MaxRecords; an empty inventory is a
// SourceError because every report is meaningless without records.
func (c *Client) ListManagedDevices(ctx context.Context, opts FetchOptions) ([]device.Record, bool, error) {
	var records []device.Record
	decode := func(raw json.RawMessage) error {
		var dto managedDeviceDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			return err
		}
		records = append(records, dto.toRecord())
		return nil
	}

	_, truncated, err := c.fetchAll(ctx, c.devicesURL(opts, ""), opts.MaxRecords, decode)
	if err != nil {
		return nil, false, err
	}
	if len(records) == 0 {
		return nil, false, appErrors.NewSourceError("managed device inventory is empty", appErrors.ErrNoRecords)
	}
	return records, truncated, nil
}

// ListRecentEnrollments fetches devices enrolled since the cutoff. Used by
// the history report; failures are the caller's warning, not ours.
func (c *Client) ListRecentEnrollments(ctx context.Context, since time.Time, opts FetchOptions) ([]device.Record, error) {
	extra := fmt.Sprintf("enrolledDateTime ge %s", since.UTC().Format(time.RFC3339))

	var records []device.Record
	decode := func(raw json.RawMessage) error {
		var dto managedDeviceDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			return err
		}
		records = append(records, dto.toRecord())
		return nil
	}

	if _, _, err := c.fetchAll(ctx, c.devicesURL(opts, extra), opts.MaxRecords, decode); err != nil {
		return nil, err
	}
	return records, nil
}
