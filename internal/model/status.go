package model

// Deployment status constants shared by Domain.DeploymentStatus and DomainDeployment.Status.
const (
	StatusNotDeployed = "not_deployed"
	StatusPending     = "pending"
	StatusDeploying   = "deploying"
	StatusDeployed    = "deployed"
	StatusFailed      = "failed"
	StatusCancelled   = "cancelled"
)

// Verification status constants for Domain.VerificationStatus.
const (
	VerificationPending  = "pending"
	VerificationActive   = "active"
	VerificationInactive = "inactive"
	VerificationError    = "error"
)

// DNS management modes.
const (
	DNSManagedByProvider = "provider"
	DNSManagedExternally = "external"
)

// Deployment log levels.
const (
	LogInfo    = "info"
	LogWarning = "warning"
	LogError   = "error"
)

// IsTerminal reports whether a run status is final.
func IsTerminal(status string) bool {
	switch status {
	case StatusDeployed, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// runTransitions lists the allowed forward moves of a DomainDeployment.
var runTransitions = map[string][]string{
	StatusPending:   {StatusDeploying, StatusFailed, StatusCancelled},
	StatusDeploying: {StatusDeployed, StatusFailed, StatusCancelled},
}

// CanTransition reports whether a run may move from one status to another.
// Terminal statuses never transition.
func CanTransition(from, to string) bool {
	for _, s := range runTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
