package request

// Provision starts provisioning a domain.
type Provision struct {
	DomainName    string `json:"domainName" validate:"required,max=253"`
	DNSManagement string `json:"dnsManagement" validate:"omitempty,dnsmode"`
}
