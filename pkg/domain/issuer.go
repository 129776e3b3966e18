package domain

import (
	"strings"

	dErrors "identrust/pkg/domain-errors"
)

// IssuerType classifies the organisation behind a credential or a trusted
// institution.
type IssuerType string

const (
	IssuerGovernment        IssuerType = "government"
	IssuerUniversity        IssuerType = "university"
	IssuerBank              IssuerType = "bank"
	IssuerHospital          IssuerType = "hospital"
	IssuerEmployer          IssuerType = "employer"
	IssuerCertificationBody IssuerType = "certification_body"
)

// IssuerTypes lists every valid issuer type in display order.
var IssuerTypes = []IssuerType{
	IssuerGovernment, IssuerUniversity, IssuerBank,
	IssuerHospital, IssuerEmployer, IssuerCertificationBody,
}

func ParseIssuerType(s string) (IssuerType, error) {
	for _, t := range IssuerTypes {
		if string(t) == strings.TrimSpace(s) {
			return t, nil
		}
	}
	return "", dErrors.New(dErrors.CodeValidation, "unsupported issuer_type: "+s)
}
