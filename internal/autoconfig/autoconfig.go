// Package autoconfig renders Thunderbird autoconfiguration files for managed
// domains.
package autoconfig

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/edvin/mailpanel/internal/model"
)

var metricRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mailpanel_autoconfig_requests_total",
		Help: "Number of autoconfig documents served.",
	},
	[]string{"domain"},
)

// UsernamePlaceholder lets the mail client substitute the address the user
// typed.
const UsernamePlaceholder = "%EMAILADDRESS%"

// Ports announced for the servers of every domain.
const (
	IMAPPort = 993
	POPPort  = 995
	SMTPPort = 587
)

type server struct {
	Type           string `xml:"type,attr"`
	Hostname       string `xml:"hostname"`
	Port           int    `xml:"port"`
	SocketType     string `xml:"socketType"`
	Username       string `xml:"username"`
	Authentication string `xml:"authentication"`
}

type clientConfig struct {
	XMLName xml.Name `xml:"clientConfig"`
	Version string   `xml:"version,attr"`

	EmailProvider struct {
		ID               string   `xml:"id,attr"`
		Domain           string   `xml:"domain"`
		DisplayName      string   `xml:"displayName"`
		DisplayShortName string   `xml:"displayShortName"`
		IncomingServers  []server `xml:"incomingServer"`
		OutgoingServer   server   `xml:"outgoingServer"`
	} `xml:"emailProvider"`
}

// Render returns the config-v1.1 document for d. username is the login
// announced for every server, usually UsernamePlaceholder. The POP server is
// only listed when the domain has one configured.
func Render(d *model.Domain, username string) ([]byte, error) {
	var cfg clientConfig
	cfg.Version = "1.1"
	cfg.EmailProvider.ID = d.Name
	cfg.EmailProvider.Domain = d.Name
	cfg.EmailProvider.DisplayName = d.DisplayName
	if cfg.EmailProvider.DisplayName == "" {
		cfg.EmailProvider.DisplayName = d.Name
	}
	cfg.EmailProvider.DisplayShortName = d.ShortDisplayName
	if cfg.EmailProvider.DisplayShortName == "" {
		cfg.EmailProvider.DisplayShortName = d.Name
	}

	cfg.EmailProvider.IncomingServers = append(cfg.EmailProvider.IncomingServers, server{
		Type:           "imap",
		Hostname:       d.IMAPServer(),
		Port:           IMAPPort,
		SocketType:     "SSL",
		Username:       username,
		Authentication: "password-cleartext",
	})
	if d.POPHost != "" {
		cfg.EmailProvider.IncomingServers = append(cfg.EmailProvider.IncomingServers, server{
			Type:           "pop3",
			Hostname:       d.POPHost,
			Port:           POPPort,
			SocketType:     "SSL",
			Username:       username,
			Authentication: "password-cleartext",
		})
	}
	cfg.EmailProvider.OutgoingServer = server{
		Type:           "smtp",
		Hostname:       d.SMTPServer(),
		Port:           SMTPPort,
		SocketType:     "STARTTLS",
		Username:       username,
		Authentication: "password-cleartext",
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "\t")
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("marshal autoconfig for %s: %w", d.Name, err)
	}
	metricRequests.WithLabelValues(d.Name).Inc()
	return buf.Bytes(), nil
}
