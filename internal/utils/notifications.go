package utils

import (
	"fmt"

	"lokali_back_end/internal/models"
)

// SendOrderCreatedEmail confirme à l'acheteur que sa commande est enregistrée
func SendOrderCreatedEmail(order models.Order, buyerEmail string) error {
	subject := "🛒 Votre commande est enregistrée - Lokali"
	html := orderEmailHTML(order,
		"Votre commande est enregistrée",
		"Le vendeur prépare vos articles. À la remise en main propre, générez votre code de livraison depuis votre espace commandes et communiquez-le au vendeur.")
	return SendMail(buyerEmail, subject, html)
}

// SendOrderDeliveredEmail confirme à l'acheteur que la livraison est validée
func SendOrderDeliveredEmail(order models.Order, buyerEmail string) error {
	subject := "🎉 Votre commande a été livrée - Lokali"
	html := orderEmailHTML(order,
		"Livraison confirmée",
		"Le code de livraison a été validé par le vendeur. Merci d'avoir commandé sur Lokali !")
	return SendMail(buyerEmail, subject, html)
}

func orderEmailHTML(order models.Order, title, message string) string {
	itemsHTML := ""
	for _, item := range order.Items {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%d</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%.2f€</td>
			</tr>`, item.Name, item.Quantity, item.Price*float64(item.Quantity))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<title>%s</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">%s</h2>
		<p>Bonjour,</p>
		<p>%s</p>

		<h3>Commande %s</h3>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Article</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Quantité</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>%s</tbody>
			<tfoot>
				<tr>
					<td colspan="2" style="padding: 8px; text-align: right; font-weight: bold;">Total:</td>
					<td style="padding: 8px; font-weight: bold;">%.2f€</td>
				</tr>
			</tfoot>
		</table>

		<p style="color: #888; font-size: 12px;">Lokali — la marketplace de proximité</p>
	</div>
</body>
</html>`, title, title, message, order.ID, itemsHTML, order.TotalPrice)
}
