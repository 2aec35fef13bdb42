package core

import "github.com/edvin/mailpanel/internal/passwd"

type Services struct {
	Domain    *DomainService
	Mailbox   *MailboxService
	Alias     *AliasService
	APIKey    *APIKeyService
	Operator  *OperatorService
	Dashboard *DashboardService
	Audit     *AuditService
	Search    *SearchService
}

func NewServices(db DB, codec *passwd.Codec, checker DKIMChecker, refresh DKIMRefreshConfig) *Services {
	return &Services{
		Domain:    NewDomainService(db, checker, refresh),
		Mailbox:   NewMailboxService(db, codec),
		Alias:     NewAliasService(db),
		APIKey:    NewAPIKeyService(db),
		Operator:  NewOperatorService(db),
		Dashboard: NewDashboardService(db),
		Audit:     NewAuditService(db),
		Search:    NewSearchService(db),
	}
}
