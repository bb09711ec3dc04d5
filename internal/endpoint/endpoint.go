// Package endpoint knows the S3 static website endpoint of each region.
package endpoint

import "fmt"

// Endpoint is the website endpoint of a region. ZoneID is the Route 53 hosted
// zone of the endpoint, needed to alias a custom domain to the bucket.
type Endpoint struct {
	Name   string
	Host   string
	ZoneID string
}

var regions = map[string]Endpoint{
	"us-east-1":      {"US East (N. Virginia)", "s3-website-us-east-1.amazonaws.com", "Z3AQBSTGFYJSTF"},
	"us-east-2":      {"US East (Ohio)", "s3-website.us-east-2.amazonaws.com", "Z2O1EMRO9K5GLX"},
	"us-west-1":      {"US West (N. California)", "s3-website-us-west-1.amazonaws.com", "Z2F56UZL2M1ACD"},
	"us-west-2":      {"US West (Oregon)", "s3-website-us-west-2.amazonaws.com", "Z3BJ6K6RIION7M"},
	"ca-central-1":   {"Canada (Central)", "s3-website.ca-central-1.amazonaws.com", "Z1QDHH18159H29"},
	"ap-south-1":     {"Asia Pacific (Mumbai)", "s3-website.ap-south-1.amazonaws.com", "Z11RGJOFQNVJUP"},
	"ap-northeast-1": {"Asia Pacific (Tokyo)", "s3-website-ap-northeast-1.amazonaws.com", "Z2M4EHUR26P7ZW"},
	"ap-northeast-2": {"Asia Pacific (Seoul)", "s3-website.ap-northeast-2.amazonaws.com", "Z3W03O7B5YMIYP"},
	"ap-northeast-3": {"Asia Pacific (Osaka)", "s3-website.ap-northeast-3.amazonaws.com", "Z2YQB5RD63NC85"},
	"ap-southeast-1": {"Asia Pacific (Singapore)", "s3-website-ap-southeast-1.amazonaws.com", "Z3O0J2DXBE1FTB"},
	"ap-southeast-2": {"Asia Pacific (Sydney)", "s3-website-ap-southeast-2.amazonaws.com", "Z1WCIGYICN2BYD"},
	"eu-central-1":   {"EU (Frankfurt)", "s3-website.eu-central-1.amazonaws.com", "Z21DNDUVLTQW6Q"},
	"eu-west-1":      {"EU (Ireland)", "s3-website-eu-west-1.amazonaws.com", "Z1BKCTXD74EZPE"},
	"eu-west-2":      {"EU (London)", "s3-website.eu-west-2.amazonaws.com", "Z3GKZC51ZF0DB4"},
	"eu-west-3":      {"EU (Paris)", "s3-website.eu-west-3.amazonaws.com", "Z3R1K369G5AVDG"},
	"eu-north-1":     {"EU (Stockholm)", "s3-website.eu-north-1.amazonaws.com", "Z3BAZG2TWCNX0D"},
	"sa-east-1":      {"South America (Sao Paulo)", "s3-website-sa-east-1.amazonaws.com", "Z7KQH4QJS55SO"},
}

// ForRegion returns the website endpoint of region. For regions missing from
// the table it returns the dotted host form used by every region launched
// since 2014, with ok set to false since the zone ID is unknown.
func ForRegion(region string) (Endpoint, bool) {
	if e, ok := regions[region]; ok {
		return e, true
	}

	return Endpoint{
		Name: region,
		Host: fmt.Sprintf("s3-website.%s.amazonaws.com", region),
	}, false
}
