package sharepoint

import (
	"context"
	"net/http"
	"strings"
)

const membersPath = "/_api/web/AssociatedMemberGroup/Users?$select=Email,LoginName,Title"

// ListSiteMembers returns the e-mail addresses of the site's member group
// in backend order. It always runs with the app token since callers may
// not be allowed to enumerate the group. Members without an e-mail are
// returned as empty strings.
func (c *Client) ListSiteMembers(ctx context.Context, siteURL string) ([]string, error) {
	var resp membersResponse
	url := strings.TrimRight(siteURL, "/") + membersPath
	if err := c.do(ctx, OpListMembers, http.MethodGet, url, c.appToken, nil, &resp); err != nil {
		return nil, err
	}

	emails := make([]string, 0, len(resp.Value))
	for _, u := range resp.Value {
		emails = append(emails, strings.TrimSpace(u.Email))
	}
	return emails, nil
}
