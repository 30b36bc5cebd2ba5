// Package email provides a minimal transactional email sender used by the
// notification handlers.
//
// The EmailSender interface has two implementations:
//
//   - NewPostmarkClient — production delivery through Postmark
//   - NewLogSender — development stand-in that logs instead of sending
//
// Both validate SendEmailParams before attempting delivery, so a malformed
// recipient fails the same way in every environment.
package email
