package config

import "regexp"

var dbCredentials = regexp.MustCompile(`//[^@/]+@`)

func maskApiKey(key string) string {
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}

func maskDBUrl(url string) string {
	return dbCredentials.ReplaceAllString(url, "//****@")
}
