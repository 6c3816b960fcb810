package server

import "github.com/tartampluch/go-agecategory/internal/engine"

type errorResponse struct {
	State string `json:"state"`
	Error string `json:"error"`
}

type eligibilityResponse struct {
	Year   int    `json:"year"`
	Status string `json:"status"`
	Text   string `json:"text"`
}

type ageResponse struct {
	Birth       string              `json:"birth"`
	Today       string              `json:"today"`
	Years       int                 `json:"years"`
	Months      int                 `json:"months"`
	TotalMonths int                 `json:"total_months"`
	Age         string              `json:"age"`
	Total       string              `json:"total"`
	Category    string              `json:"category"`
	Eligibility eligibilityResponse `json:"eligibility"`
}

type durationResponse struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	Years       int    `json:"years"`
	Months      int    `json:"months"`
	TotalMonths int    `json:"total_months"`
	Duration    string `json:"duration"`
	Total       string `json:"total"`
}

type monthResponse struct {
	Name      string `json:"name"`
	Number    int    `json:"number"`
	Canonical string `json:"canonical"`
}

type monthsResponse struct {
	Query       string          `json:"query"`
	Suggestions []monthResponse `json:"suggestions"`
	Resolved    *monthResponse  `json:"resolved"`
}

type daysResponse struct {
	Days []string `json:"days"`
}

type childResponse struct {
	UID  string      `json:"uid"`
	Name string      `json:"name"`
	Born string      `json:"born"`
	Age  ageResponse `json:"age"`
}

func newAgeResponse(res engine.AgeResult) ageResponse {
	return ageResponse{
		Birth:       res.Birth.String(),
		Today:       res.Today.String(),
		Years:       res.Years,
		Months:      res.Months,
		TotalMonths: res.TotalMonths,
		Age:         res.Span.String(),
		Total:       res.Total(),
		Category:    res.Category.String(),
		Eligibility: eligibilityResponse{
			Year:   res.Eligibility.Year,
			Status: res.Eligibility.Status.String(),
			Text:   res.Eligibility.String(),
		},
	}
}

func newMonthResponse(tok engine.MonthToken) monthResponse {
	return monthResponse{Name: tok.Name, Number: tok.Number, Canonical: tok.Canonical()}
}

func newChildResponse(c engine.ChildEntry) childResponse {
	return childResponse{
		UID:  c.UID,
		Name: c.Name,
		Born: c.Born().String(),
		Age:  newAgeResponse(c.Age),
	}
}
