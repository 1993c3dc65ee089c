package cloudflare

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
)

// ListDNSRecords lists records in a zone, following result pages until the
// last one. An empty nameFilter lists all records; a missing zone yields an
// empty list.
func (c *Client) ListDNSRecords(ctx context.Context, nameFilter, zoneID string) ([]Record, error) {
	q := url.Values{"per_page": {strconv.Itoa(recordsPerPage)}}
	if nameFilter != "" {
		q.Set("name", strings.ToLower(nameFilter))
	}

	var records []Record
	for page := 1; ; page++ {
		q.Set("page", strconv.Itoa(page))
		var p recordPage
		err := c.call(ctx, "list_records", http.MethodGet, recordsPath(zoneID), q, nil, &p)
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, p.records...)
		if len(p.records) == 0 || page >= p.info.TotalPages {
			return records, nil
		}
	}
}

// UpsertRecord makes sure exactly one record of the given type and name
// points at content. An identical record is returned untouched.
func (c *Client) UpsertRecord(ctx context.Context, zoneID, recordType, name, content string) (*Record, error) {
	recordType = strings.ToUpper(recordType)
	name = strings.ToLower(strings.TrimSuffix(name, "."))
	if err := ValidateRecord(recordType, name, content); err != nil {
		return nil, err
	}

	existing, err := c.ListDNSRecords(ctx, name, zoneID)
	if err != nil {
		return nil, fmt.Errorf("upsert %s %s: %w", recordType, name, err)
	}

	body := recordRequest{Type: recordType, Name: name, Content: content, TTL: 1}
	for _, r := range existing {
		if !strings.EqualFold(r.Type, recordType) {
			continue
		}
		if strings.EqualFold(strings.TrimSuffix(r.Content, "."), strings.TrimSuffix(content, ".")) {
			rec := r
			return &rec, nil
		}
		var updated Record
		if err := c.call(ctx, "update_record", http.MethodPut,
			recordsPath(zoneID)+"/"+url.PathEscape(r.ID), nil, body, &updated); err != nil {
			return nil, err
		}
		return &updated, nil
	}

	var created Record
	if err := c.call(ctx, "create_record", http.MethodPost, recordsPath(zoneID), nil, body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteRecord removes a record. Deleting a missing record succeeds.
func (c *Client) DeleteRecord(ctx context.Context, recordID, zoneID string) error {
	err := c.call(ctx, "delete_record", http.MethodDelete,
		recordsPath(zoneID)+"/"+url.PathEscape(recordID), nil, nil, nil)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	return err
}

const recordsPerPage = 100

func recordsPath(zoneID string) string {
	return "/zones/" + url.PathEscape(zoneID) + "/dns_records"
}
