package lfsaudit

import "fmt"

const grepExpressionTemplateConstant = "oid %s:%s"

// Pointer identifies one tracked large object by repository path, hash, and size.
type Pointer struct {
	Name    string `json:"name"`
	OidType string `json:"oid_type"`
	Oid     string `json:"oid"`
	Size    int64  `json:"size"`
}

// GrepExpression returns the exact pointer marker text stored in committed pointer files.
func (pointer Pointer) GrepExpression() string {
	return fmt.Sprintf(grepExpressionTemplateConstant, pointer.OidType, pointer.Oid)
}

// Credential carries a basic-auth pair resolved from the credential helper.
type Credential struct {
	Username string
	Password string
}

// Remote describes one configured remote with its verification URL and optional credential.
type Remote struct {
	Name       string
	URL        string
	Credential *Credential
}
