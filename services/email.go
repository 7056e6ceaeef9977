package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

const resendAPI = "https://api.resend.com/emails"
const defaultFrom = "Royal Palms Hotel <noreply@royalpalms.lk>"

// EmailService handles booking confirmation mail. Sends are fire-and-forget
// from the booking engine: failures are logged with the booking ID and never
// fail the request that triggered them.
type EmailService struct {
	client *http.Client
}

func NewEmailService() *EmailService {
	return &EmailService{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// BookingDetails is the human-readable block embedded in the confirmation.
type BookingDetails struct {
	Room         string
	CheckInDate  string
	CheckOutDate string
	Guests       string
}

type resendEmail struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Html    string `json:"html"`
	Text    string `json:"text,omitempty"`
}

func (es *EmailService) send(to, subject, htmlBody, textBody string) error {
	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey == "" {
		log.Printf("[email] Missing RESEND_API_KEY, mock email triggered.")
		fmt.Printf("\n--- MOCK EMAIL ---\nTo: %s\nSubject: %s\nBody:\n%s\n-------------------\n",
			to, subject, htmlBody)
		return nil
	}

	payload := resendEmail{
		From:    defaultFrom,
		To:      to,
		Subject: subject,
		Html:    htmlBody,
		Text:    textBody,
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequest("POST", resendAPI, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := es.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("email API error: %s", resp.Status)
	}

	return nil
}

// SendBookingConfirmation mails the guest after a booking is persisted.
// The booking ID doubles as the idempotent reference for the message.
func (es *EmailService) SendBookingConfirmation(to, name string, bookingID uint, amount float64, details BookingDetails) error {
	subject := "Payment Successful - Your Booking is Confirmed!"
	html := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; color: #333;">
			<h2>Hello %s,</h2>
			<p>Your payment was successful and your booking is confirmed!</p>
			<div style="background: #f9f9f9; padding: 15px; border-radius: 8px;">
				<h3>Booking Summary</h3>
				<p><strong>Booking ID:</strong> %d</p>
				<p><strong>Amount Paid:</strong> Rs %.2f</p>
				<ul style="list-style-type: none; padding: 0;">
					<li><strong>Room:</strong> %s</li>
					<li><strong>Check-in:</strong> %s</li>
					<li><strong>Check-out:</strong> %s</li>
					<li><strong>Guests:</strong> %s</li>
				</ul>
			</div>
			<p>Thanks for choosing Royal Palms Hotel. We can't wait to host you!</p>
		</div>
	`, name, bookingID, amount, details.Room, details.CheckInDate, details.CheckOutDate, details.Guests)

	text := fmt.Sprintf("Booking %d confirmed. Room %s, %s to %s, %s. Amount paid: Rs %.2f.",
		bookingID, details.Room, details.CheckInDate, details.CheckOutDate, details.Guests, amount)

	err := es.send(to, subject, html, text)
	if err != nil {
		log.Printf("[email] failed to send confirmation for booking %d: %v", bookingID, err)
		return err
	}

	log.Printf("[email] confirmation sent for booking %d to %s", bookingID, to)
	return nil
}
