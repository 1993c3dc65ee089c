package core

// Services is the registry built once at startup and shared by the API,
// the orchestrator and the repair service.
type Services struct {
	Domain      *DomainService
	LandingPage *LandingPageService
	Deployment  *DeploymentService
}

func NewServices(db DB) *Services {
	return &Services{
		Domain:      NewDomainService(db),
		LandingPage: NewLandingPageService(db),
		Deployment:  NewDeploymentService(db),
	}
}
