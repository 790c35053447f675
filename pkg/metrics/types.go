package metrics

// Request/response shapes for the provider's runReport endpoint

type runReportRequest struct {
	DateRanges []dateRange  `json:"dateRanges"`
	Dimensions []dimension  `json:"dimensions,omitempty"`
	Metrics    []metricSpec `json:"metrics"`
	Limit      int64        `json:"limit,omitempty"`
}

type dateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type dimension struct {
	Name string `json:"name"`
}

type metricSpec struct {
	Name string `json:"name"`
}

type runReportResponse struct {
	DimensionHeaders []header    `json:"dimensionHeaders"`
	MetricHeaders    []header    `json:"metricHeaders"`
	Rows             []reportRow `json:"rows"`
	RowCount         int64       `json:"rowCount"`
}

type header struct {
	Name string `json:"name"`
}

type reportRow struct {
	DimensionValues []reportValue `json:"dimensionValues"`
	MetricValues    []reportValue `json:"metricValues"`
}

type reportValue struct {
	Value string `json:"value"`
}
