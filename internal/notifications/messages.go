package notifications

import (
	"fmt"
	"net/url"
	"strings"
)

func WelcomeMessage(name, email string) Message {
	return Message{
		Kind:    KindWelcome,
		To:      email,
		Subject: "Bem-vindo ao Plant Doctor",
		Body: fmt.Sprintf(
			"Olá %s,\n\nSeu cadastro foi realizado com sucesso. Já pode entrar no aplicativo e escolher as culturas que acompanha.\n\nEquipe Plant Doctor\n",
			name,
		),
	}
}

func PasswordResetMessage(name, email, link string) Message {
	return Message{
		Kind:    KindPasswordReset,
		To:      email,
		Subject: "Redefinição de senha",
		Body: fmt.Sprintf(
			"Olá %s,\n\nRecebemos um pedido para redefinir a sua senha. Use o link abaixo para escolher uma nova senha:\n\n%s\n\nSe não foi você, ignore este email. O link expira em breve e só pode ser usado uma vez.\n\nEquipe Plant Doctor\n",
			name, link,
		),
	}
}

// BuildResetLink appends the token as a query parameter, respecting any
// query string already present on base.
func BuildResetLink(base, token string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "token=" + url.QueryEscape(token)
}
