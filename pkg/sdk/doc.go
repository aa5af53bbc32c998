// Package sitetrends provides an embeddable client that builds the
// "trending in this site" feed: documents that a site's members have
// been working on, ranked by the activity graph of the search backend.
//
//	client, _ := sitetrends.New(ctx,
//	    sitetrends.WithAppToken(appToken),
//	    sitetrends.WithActorCache("localhost:6379", "", 5*time.Minute),
//	)
//	defer client.Close()
//
//	feed, _ := client.Trending(ctx, "https://contoso.sharepoint.com/sites/eng", userToken)
//	for _, d := range feed.Documents {
//	    fmt.Println(d.Title, "last modified by", d.LastModifiedByName+",", d.DisplayDate)
//	}
package sitetrends
