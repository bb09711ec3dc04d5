package bucket

import (
	"encoding/json"
	"fmt"
)

type policyStatement struct {
	Sid       string   `json:"Sid"`
	Effect    string   `json:"Effect"`
	Principal string   `json:"Principal"`
	Action    []string `json:"Action"`
	Resource  []string `json:"Resource"`
}

type policyDocument struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

// PublicReadPolicy returns the bucket policy letting anyone read every object
// of the bucket.
func PublicReadPolicy(name string) (string, error) {
	b, err := json.Marshal(policyDocument{
		Version: "2012-10-17",
		Statement: []policyStatement{
			{
				Sid:       "PublicReadGetObject",
				Effect:    "Allow",
				Principal: "*",
				Action:    []string{"s3:GetObject"},
				Resource:  []string{fmt.Sprintf("arn:aws:s3:::%s/*", name)},
			},
		},
	})
	if err != nil {
		return "", err
	}

	return string(b), nil
}
