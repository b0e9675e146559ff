// Package mail renders and delivers verification and password reset mail.
//
// A [Composer] turns a one-time code into an HTML message with a link of the
// form {base}?id={accountId:code} and hands it to a [Sender]. [LogSender]
// writes messages to a zap logger for development; [SMTPSender] delivers
// through an SMTP relay.
package mail
