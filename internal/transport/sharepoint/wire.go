package sharepoint

import (
	"github.com/kailas-cloud/sitetrends/internal/domain/search/request"
	"github.com/kailas-cloud/sitetrends/internal/domain/search/result"
)

// postQueryBody is the envelope of POST /_api/search/postquery.
type postQueryBody struct {
	Request postQuery `json:"request"`
}

type postQuery struct {
	Querytext         string          `json:"Querytext"`
	SourceID          string          `json:"SourceId,omitempty"`
	SelectProperties  []string        `json:"SelectProperties"`
	RowLimit          int             `json:"RowLimit"`
	Properties        []queryProperty `json:"Properties,omitempty"`
	RankingModelID    string          `json:"RankingModelId,omitempty"`
	ClientType        string          `json:"ClientType,omitempty"`
	BypassResultTypes bool            `json:"BypassResultTypes,omitempty"`
}

type queryProperty struct {
	Name  string        `json:"Name"`
	Value propertyValue `json:"Value"`
}

type propertyValue struct {
	StrVal                      string `json:"StrVal"`
	QueryPropertyValueTypeIndex int    `json:"QueryPropertyValueTypeIndex"`
}

// searchResponse is the subset of the postquery response that carries rows.
type searchResponse struct {
	PrimaryQueryResult *struct {
		RelevantResults struct {
			RowCount int `json:"RowCount"`
			Table    struct {
				Rows []struct {
					Cells []cell `json:"Cells"`
				} `json:"Rows"`
			} `json:"Table"`
		} `json:"RelevantResults"`
	} `json:"PrimaryQueryResult"`
}

type cell struct {
	Key   string  `json:"Key"`
	Value *string `json:"Value"`
}

// membersResponse is the body of GET /_api/web/AssociatedMemberGroup/Users.
type membersResponse struct {
	Value []struct {
		Email     string `json:"Email"`
		LoginName string `json:"LoginName"`
		Title     string `json:"Title"`
	} `json:"value"`
}

func keywordBody(q *request.Keyword) postQueryBody {
	return postQueryBody{Request: postQuery{
		Querytext:        q.QueryText(),
		SourceID:         q.SourceID(),
		SelectProperties: q.SelectFields(),
		RowLimit:         q.RowLimit(),
	}}
}

func graphBody(q *request.Graph) postQueryBody {
	props := q.Properties()
	wireProps := make([]queryProperty, 0, len(props))
	for _, p := range props {
		wireProps = append(wireProps, queryProperty{
			Name: p.Name,
			Value: propertyValue{
				StrVal:                      p.Value,
				QueryPropertyValueTypeIndex: int(p.Type),
			},
		})
	}
	return postQueryBody{Request: postQuery{
		Querytext:         q.QueryText(),
		SelectProperties:  q.SelectFields(),
		RowLimit:          q.RowLimit(),
		Properties:        wireProps,
		RankingModelID:    q.RankingModelID(),
		ClientType:        q.ClientType(),
		BypassResultTypes: q.BypassResultTypes(),
	}}
}

// rows flattens the relevant results table. Null cells are omitted.
func (r *searchResponse) rows() []result.Row {
	if r.PrimaryQueryResult == nil {
		return nil
	}
	table := r.PrimaryQueryResult.RelevantResults.Table.Rows
	out := make([]result.Row, 0, len(table))
	for _, tr := range table {
		row := make(result.Row, len(tr.Cells))
		for _, c := range tr.Cells {
			if c.Value != nil {
				row[c.Key] = *c.Value
			}
		}
		out = append(out, row)
	}
	return out
}
