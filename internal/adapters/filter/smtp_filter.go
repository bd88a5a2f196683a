package filter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/phishnot/phishnot/internal/core"
	"github.com/phishnot/phishnot/internal/ports"
	"go.uber.org/zap"
)

// SMTPFilter implements an SMTP content filter that tags or rejects
// phishing email before handing it back to the relay
type SMTPFilter struct {
	engine         *core.FusionEngine
	feedback       ports.FeedbackRepository
	windowLimit    int
	windowMaxAge   time.Duration
	logger         *zap.Logger
	listenAddr     string
	server         *smtp.Server
	blockPhishing  bool
	statusHeader   string
	scoreHeader    string
	riskHeader     string
	patternsHeader string
	relayAddr      string
	relayPort      int
	relayEnabled   bool
	subjectPrefix  string
	modifySubject  bool
}

// NewSMTPFilter creates a new SMTP content filter
func NewSMTPFilter(
	engine *core.FusionEngine,
	feedback ports.FeedbackRepository,
	windowLimit int,
	windowMaxAge time.Duration,
	logger *zap.Logger,
	listenAddr string,
	blockPhishing bool,
	statusHeader string,
	scoreHeader string,
	riskHeader string,
	patternsHeader string,
	relayAddr string,
	relayPort int,
	relayEnabled bool,
	subjectPrefix string,
	modifySubject bool,
) *SMTPFilter {
	// If subject prefix is not set but modify subject is enabled, use default prefix
	if subjectPrefix == "" && modifySubject {
		subjectPrefix = "[**PHISHING**] "
	}

	return &SMTPFilter{
		engine:         engine,
		feedback:       feedback,
		windowLimit:    windowLimit,
		windowMaxAge:   windowMaxAge,
		logger:         logger,
		listenAddr:     listenAddr,
		blockPhishing:  blockPhishing,
		statusHeader:   statusHeader,
		scoreHeader:    scoreHeader,
		riskHeader:     riskHeader,
		patternsHeader: patternsHeader,
		relayAddr:      relayAddr,
		relayPort:      relayPort,
		relayEnabled:   relayEnabled,
		subjectPrefix:  subjectPrefix,
		modifySubject:  modifySubject,
	}
}

// Start starts the SMTP filter service
func (f *SMTPFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	f.server.Addr = f.listenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("SMTP filter starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				f.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP filter service
func (f *SMTPFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail analyzes an email and returns the verdict
// This is mainly used for testing or direct API calls
func (f *SMTPFilter) ProcessEmail(ctx context.Context, req *core.AnalysisRequest) (*core.Verdict, error) {
	window, err := f.recentFeedback(ctx, req.RequesterID)
	if err != nil {
		f.logger.Warn("Failed to load feedback window", zap.Error(err))
	}
	return f.engine.Evaluate(ctx, req, window)
}

func (f *SMTPFilter) recentFeedback(ctx context.Context, requesterID string) ([]core.FeedbackRecord, error) {
	if f.feedback == nil || requesterID == "" {
		return nil, nil
	}
	return f.feedback.Recent(ctx, requesterID, f.windowLimit, f.windowMaxAge)
}

// sendToRelay sends the processed email back to the relay on the configured port
func (f *SMTPFilter) sendToRelay(sender string, recipients []string, emailData []byte) error {
	relayAddr := fmt.Sprintf("%s:%d", f.relayAddr, f.relayPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", relayAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			// Continue with other recipients even if one fails
		} else {
			recipientOK = true
		}
	}

	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}

	_, err = wc.Write(emailData)
	if err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
		// Not returning an error here as the email has already been sent
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *SMTPFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		filter:     b.filter,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *SMTPFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for our filter)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data handles the email data
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	// Keep a copy of the raw data for later reconstruction
	rawDataCopy := make([]byte, len(rawData))
	copy(rawDataCopy, rawData)

	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.filter.logger.Error("Failed to parse email message", zap.Error(err))
		return err
	}

	textContent, err := extractTextFromMessage(msg)
	if err != nil {
		s.filter.logger.Error("Failed to extract text content", zap.Error(err))
		return err
	}

	req := &core.AnalysisRequest{
		EmailText: textContent,
		Sender:    s.sender,
		Subject:   msg.Header.Get("Subject"),
		Links:     extractLinks(textContent),
	}
	// Personalization is keyed by the mailbox receiving the message
	if len(s.recipients) > 0 {
		req.RequesterID = s.recipients[0]
	}

	senderDomain := "unknown"
	if parts := strings.Split(s.sender, "@"); len(parts) == 2 {
		senderDomain = parts[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Analyze the email, but handle errors gracefully
	verdict, analysisErr := s.filter.ProcessEmail(ctx, req)
	if analysisErr != nil {
		s.filter.logger.Error("Failed to analyze email",
			zap.Error(analysisErr),
			zap.String("sender", s.sender),
			zap.String("sender_domain", senderDomain))

		// Fall back to delivering the email untagged rather than losing it
		verdict = &core.Verdict{
			Result:     core.ResultSafe,
			Confidence: 0.0,
			RiskLevel:  core.RiskLow,
			AnalyzedAt: time.Now(),
		}
	}

	isPhishing := verdict.IsPhishing()
	score := verdict.FusedScore

	if isPhishing && s.filter.blockPhishing && analysisErr == nil {
		// Only reject if it's phishing AND there was no error in analysis
		s.filter.logger.Info("Rejecting phishing email",
			zap.String("from", s.sender),
			zap.String("sender_domain", senderDomain),
			zap.Float64("score", score),
			zap.String("risk", string(verdict.RiskLevel)),
			zap.String("summary", verdict.Explanation.Summary))
		return fmt.Errorf("550 Rejected as phishing (score: %.2f)", score)
	}

	// Prepend the detection headers to the message
	var modifiedEmail bytes.Buffer
	fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", s.filter.statusHeader, verdict.Result)
	fmt.Fprintf(&modifiedEmail, "%s: %.4f\r\n", s.filter.scoreHeader, score)
	fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", s.filter.riskHeader, verdict.RiskLevel)
	if len(verdict.DetectedPatterns) > 0 {
		fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", s.filter.patternsHeader, joinPatterns(verdict.DetectedPatterns))
	}
	if analysisErr != nil {
		fmt.Fprintf(&modifiedEmail, "X-Phishing-Analysis-Error: %s\r\n", analysisErr.Error())
	}

	// Modify the subject if it's phishing and subject modification is enabled
	skipSubject := false
	if isPhishing && s.filter.modifySubject && s.filter.subjectPrefix != "" {
		originalSubject := msg.Header.Get("Subject")

		decodedSubject, err := decodeEncodedHeader(originalSubject)
		if err != nil {
			decodedSubject = originalSubject
		}

		if !strings.HasPrefix(decodedSubject, s.filter.subjectPrefix) {
			fmt.Fprintf(&modifiedEmail, "Subject: %s%s\r\n", s.filter.subjectPrefix, decodedSubject)
			skipSubject = true
		}
	}

	for key, values := range msg.Header {
		if skipSubject && strings.EqualFold(key, "Subject") {
			continue
		}
		for _, value := range values {
			fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", key, value)
		}
	}

	// End of headers
	fmt.Fprintf(&modifiedEmail, "\r\n")

	// Find where the original body starts in the raw data so MIME parts
	// and attachments survive untouched
	bodyStartIndex := bytes.Index(rawDataCopy, []byte("\r\n\r\n"))
	if bodyStartIndex == -1 {
		bodyStartIndex = bytes.Index(rawDataCopy, []byte("\n\n"))
		if bodyStartIndex == -1 {
			bodyBytes, err := io.ReadAll(msg.Body)
			if err != nil {
				s.filter.logger.Error("Failed to read message body", zap.Error(err))
				return err
			}
			modifiedEmail.Write(bodyBytes)
		} else {
			modifiedEmail.Write(rawDataCopy[bodyStartIndex+2:])
		}
	} else {
		modifiedEmail.Write(rawDataCopy[bodyStartIndex+4:])
	}

	if s.filter.relayEnabled {
		if err := s.filter.sendToRelay(s.sender, s.recipients, modifiedEmail.Bytes()); err != nil {
			s.filter.logger.Error("Failed to send email back to relay",
				zap.Error(err),
				zap.String("sender", s.sender))
			return err
		}
	} else {
		s.filter.logger.Warn("Relay forwarding disabled, this is likely a misconfiguration")
	}

	s.filter.logger.Info("Processed email",
		zap.String("from", s.sender),
		zap.String("sender_domain", senderDomain),
		zap.Bool("is_phishing", isPhishing),
		zap.Float64("score", score),
		zap.String("risk", string(verdict.RiskLevel)))

	return nil
}

// Logout handles SMTP logout (not needed for our filter)
func (s *smtpSession) Logout() error {
	return nil
}
