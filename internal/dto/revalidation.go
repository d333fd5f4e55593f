package dto

type DeploymentResponse struct {
	Deployments []Deployment `json:"deployments"`
}
type Deployment struct {
	URL string `json:"url"`
}

// RevalidationData tells the public site which content pages to rebuild.
type RevalidationData struct {
	Resource    string `json:"resource,omitempty"`
	Ids         []int  `json:"ids,omitempty"`
	Media       bool   `json:"media,omitempty"`
	Preferences bool   `json:"preferences,omitempty"`
}

type RevalidationResponse struct {
	Success bool `json:"success"`
}
