package service

import (
	"fmt"

	mail "github.com/go-mail/mail/v2"
)

// Notificador sends overdue-loan reminder emails. It is optional; a nil
// notificador disables the notify endpoint.
type Notificador struct {
	dialer *mail.Dialer
	from   string
}

func NewNotificador(host string, port int, username, password, from string) *Notificador {
	return &Notificador{
		dialer: mail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// EnviarRecordatorio mails the user a reminder about an overdue book.
func (n *Notificador) EnviarRecordatorio(correo, nombre, titulo string, diasRetraso int) error {
	m := mail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", correo)
	m.SetHeader("Subject", "Recordatorio: devolución pendiente")
	m.SetBody("text/plain", fmt.Sprintf(
		"Hola %s,\n\nEl libro \"%s\" tiene %d día(s) de retraso. Por favor devuélvelo a la biblioteca lo antes posible.\n\nBiblioteca",
		nombre, titulo, diasRetraso,
	))
	return n.dialer.DialAndSend(m)
}
