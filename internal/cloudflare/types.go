package cloudflare

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Zone is a Cloudflare zone as returned by the v4 API.
type Zone struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Status      string   `json:"status"`
	NameServers []string `json:"name_servers"`
}

// ZoneStatus is the activation state of a zone. Found is false when the
// provider has no such zone.
type ZoneStatus struct {
	ID          string
	Name        string
	Status      string
	Active      bool
	Found       bool
	NameServers []string
}

// Record is a DNS record inside a zone. Name is always fully qualified.
type Record struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	TTL     int    `json:"ttl"`
	Proxied bool   `json:"proxied"`
}

type envelope struct {
	Success    bool            `json:"success"`
	Errors     apiErrors       `json:"errors"`
	Result     json.RawMessage `json:"result"`
	ResultInfo *resultInfo     `json:"result_info"`
}

// resultInfo is the paging block Cloudflare attaches to list results.
type resultInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Count      int `json:"count"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// pagedResult is implemented by list results that want the paging block.
type pagedResult interface {
	setResultInfo(resultInfo)
}

type recordPage struct {
	records []Record
	info    resultInfo
}

func (p *recordPage) UnmarshalJSON(b []byte) error { return json.Unmarshal(b, &p.records) }

func (p *recordPage) setResultInfo(ri resultInfo) { p.info = ri }

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type apiErrors []apiError

func (e apiErrors) Error() string {
	if len(e) == 0 {
		return "unknown error"
	}
	msgs := make([]string, len(e))
	for i, ae := range e {
		msgs[i] = fmt.Sprintf("%d: %s", ae.Code, ae.Message)
	}
	return strings.Join(msgs, "; ")
}

func (e apiErrors) has(code int) bool {
	for _, ae := range e {
		if ae.Code == code {
			return true
		}
	}
	return false
}

type createZoneRequest struct {
	Name      string     `json:"name"`
	Account   accountRef `json:"account"`
	JumpStart bool       `json:"jump_start"`
	Type      string     `json:"type"`
}

type accountRef struct {
	ID string `json:"id"`
}

type recordRequest struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	TTL     int    `json:"ttl"`
	Proxied bool   `json:"proxied"`
}
