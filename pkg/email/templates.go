package email

const emailTemplates = `
{{define "subscription_activated"}}
<div style="font-family: Arial, sans-serif; max-width: 560px; margin: 0 auto;">
  <h2>Pagamento confirmado!</h2>
  <p>Olá {{.Name}},</p>
  <p>Sua assinatura <strong>{{.PlanName}}</strong> está ativa.</p>
  <table style="width: 100%; border-collapse: collapse; margin: 16px 0;">
    <tr>
      <td style="padding: 8px; border-bottom: 1px solid #eee;">Valor</td>
      <td style="padding: 8px; border-bottom: 1px solid #eee;">R$ {{printf "%.2f" .Amount}}</td>
    </tr>
    <tr>
      <td style="padding: 8px; border-bottom: 1px solid #eee;">Válida até</td>
      <td style="padding: 8px; border-bottom: 1px solid #eee;">{{.PeriodEnd.Format "02/01/2006"}}</td>
    </tr>
  </table>
  <p>Bom proveito dos assets!</p>
  <p>— Equipe Galerium</p>
</div>
{{end}}
`
