package model

import "github.com/shopspring/decimal"

// BarChart is a declarative bar chart; rendering is left to the client.
type BarChart struct {
	Title  string `json:"title"`
	XLabel string `json:"x_label"`
	YLabel string `json:"y_label"`
	Bars   []Bar  `json:"bars"`
}

type Bar struct {
	Label   string          `json:"label"`
	Value   int64           `json:"value"`
	Revenue decimal.Decimal `json:"revenue"`
}

type PieChart struct {
	Title  string     `json:"title"`
	Slices []PieSlice `json:"slices"`
}

type PieSlice struct {
	Label   string  `json:"label"`
	Value   int     `json:"value"`
	Percent float64 `json:"percent"`
}
