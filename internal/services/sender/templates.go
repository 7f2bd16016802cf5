package services

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/magabrotheeeer/audio-library/internal/models"
)

type emailTemplate struct {
	subject *template.Template
	body    *template.Template
}

var emailTemplates = map[string]emailTemplate{
	models.EmailActivation: newEmailTemplate(
		"Активация аккаунта на {{.site_name}}",
		`Здравствуйте, {{.first_name}}!

Вы зарегистрировались на {{.site_name}}. Чтобы активировать аккаунт, перейдите по ссылке:
{{.url}}

Если вы не регистрировались, просто проигнорируйте это письмо.`),
	models.EmailConfirmation: newEmailTemplate(
		"Аккаунт на {{.site_name}} активирован",
		`Здравствуйте, {{.first_name}}!

Ваш аккаунт на {{.site_name}} активирован. Теперь вы можете войти и загружать треки.`),
	models.EmailPasswordReset: newEmailTemplate(
		"Сброс пароля на {{.site_name}}",
		`Здравствуйте, {{.first_name}}!

Мы получили запрос на сброс пароля. Чтобы задать новый пароль, перейдите по ссылке:
{{.url}}

Если вы не запрашивали сброс, просто проигнорируйте это письмо.`),
	models.EmailPasswordChanged: newEmailTemplate(
		"Пароль на {{.site_name}} изменён",
		`Здравствуйте, {{.first_name}}!

Пароль вашего аккаунта на {{.site_name}} был изменён.`),
	models.EmailNewsletter: newEmailTemplate(
		"Новое на {{.site_name}} за неделю",
		`Здравствуйте, {{.first_name}}!

За неделю на {{.site_name}} появились новые треки и альбомы. Заходите послушать!

Отписаться от рассылки можно в настройках профиля.`),
}

func newEmailTemplate(subject, body string) emailTemplate {
	return emailTemplate{
		subject: template.Must(template.New("subject").Option("missingkey=zero").Parse(subject)),
		body:    template.Must(template.New("body").Option("missingkey=zero").Parse(body)),
	}
}

// render возвращает тему и текст письма для задачи.
func render(task models.EmailTask) (string, string, error) {
	const op = "sender.render"
	tmpl, ok := emailTemplates[task.Kind]
	if !ok {
		return "", "", fmt.Errorf("%s: unknown email kind %q", op, task.Kind)
	}
	var subject, body strings.Builder
	if err := tmpl.subject.Execute(&subject, task.Context); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	if err := tmpl.body.Execute(&body, task.Context); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return subject.String(), body.String(), nil
}
