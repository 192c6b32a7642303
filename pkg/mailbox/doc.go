// Package mailbox provides an in-process SMTP server that keeps every
// received message in memory.
//
// It is meant for local development and tests: point an SMTP transport at
// the mailbox address and inspect what would have been delivered.
//
//	mb := mailbox.New(mailbox.WithCredentials("user", "secret"))
//	if err := mb.Start("127.0.0.1:0"); err != nil {
//		return err
//	}
//	defer mb.Close()
//
//	// ... send mail to mb.Addr() ...
//
//	mail, err := mb.Next(ctx)
//	fmt.Println(mail.From, mail.To, mail.Contains("Subject: Welcome"))
//
// Authentication is optional. When credentials are configured, the server
// advertises AUTH PLAIN and rejects MAIL FROM from unauthenticated sessions.
package mailbox
