// Package event publishes and consumes company-creation notifications.
//
// Notification is best effort. A company row is committed before its event is
// published, and a failed publish is logged and counted but never undoes or fails
// the registration. There is no outbox and no dead-letter queue, so a consumer
// may miss an event; consumers needing completeness must reconcile from the store.
package event

import (
	"encoding/json"
	"fmt"

	"catchup-registry/internal/domain/entity"
)

// TopicCompanyCreated carries one message per newly created company.
const TopicCompanyCreated = "company_created"

// CompanyPayload is the wire shape of a company_created message.
type CompanyPayload struct {
	Company *entity.Company `json:"company"`
}

// EncodeCompany renders the payload for c.
func EncodeCompany(c *entity.Company) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("encode company: nil company")
	}
	return json.Marshal(CompanyPayload{Company: c})
}

// DecodeCompany parses a company_created payload. Any malformed payload, including
// one without a company or without a company name, wraps entity.ErrDecode.
func DecodeCompany(data []byte) (*entity.Company, error) {
	var p CompanyPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrDecode, err)
	}
	if p.Company == nil {
		return nil, fmt.Errorf("%w: missing company", entity.ErrDecode)
	}
	if p.Company.Name == "" {
		return nil, fmt.Errorf("%w: company without name", entity.ErrDecode)
	}
	return p.Company, nil
}
