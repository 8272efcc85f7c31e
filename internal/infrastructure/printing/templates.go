package printing

// defaultInvoiceTemplate is the built-in A4 invoice layout
const defaultInvoiceTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Invoice {{.Number}}</title>
<style>
  body { font-family: 'Helvetica Neue', Arial, sans-serif; font-size: 12px; color: #1a1a2e; margin: 0; }
  .header { display: flex; justify-content: space-between; margin-bottom: 32px; }
  .header img { max-height: 64px; }
  h1 { font-size: 26px; letter-spacing: 2px; margin: 0 0 4px; }
  .meta { text-align: right; }
  .meta .number { font-size: 14px; font-weight: bold; }
  .status { display: inline-block; padding: 2px 10px; border-radius: 3px; background: #eef2f7; text-transform: uppercase; font-size: 10px; letter-spacing: 1px; }
  .parties { display: flex; justify-content: space-between; margin-bottom: 28px; }
  .party h3 { font-size: 10px; text-transform: uppercase; letter-spacing: 1px; color: #6b7280; margin: 0 0 6px; }
  .party p { margin: 1px 0; }
  table.lines { width: 100%; border-collapse: collapse; margin-bottom: 20px; }
  table.lines th { text-align: left; font-size: 10px; text-transform: uppercase; letter-spacing: 1px; color: #6b7280; border-bottom: 2px solid #1a1a2e; padding: 6px 8px; }
  table.lines td { padding: 8px; border-bottom: 1px solid #e5e7eb; }
  table.lines th.num, table.lines td.num { text-align: right; }
  .totals { width: 280px; margin-left: auto; }
  .totals .row { display: flex; justify-content: space-between; padding: 4px 8px; }
  .totals .grand { border-top: 2px solid #1a1a2e; font-weight: bold; font-size: 14px; padding-top: 8px; }
  .totals .due { color: #b91c1c; font-weight: bold; }
  .notes { margin-top: 32px; color: #4b5563; }
  .notes h3 { font-size: 10px; text-transform: uppercase; letter-spacing: 1px; color: #6b7280; margin: 0 0 4px; }
</style>
</head>
<body>
  <div class="header">
    <div>
      {{if .LogoURL}}<img src="{{.LogoURL}}" alt="">{{end}}
      <h1>INVOICE</h1>
      <span class="status">{{.Status}}</span>
    </div>
    <div class="meta">
      <div class="number">{{.Number}}</div>
      <div>Issued: {{formatDate .IssueDate}}</div>
      <div>Due: {{formatDate .DueDate}}</div>
    </div>
  </div>

  <div class="parties">
    <div class="party">
      <h3>From</h3>
      <p><strong>{{.Company.Name}}</strong></p>
      {{if .Company.Address}}<p>{{.Company.Address}}</p>{{end}}
      {{if .Company.City}}<p>{{.Company.City}}{{if .Company.State}}, {{.Company.State}}{{end}} {{.Company.PostalCode}}</p>{{end}}
      {{if .Company.Country}}<p>{{.Company.Country}}</p>{{end}}
      {{if .Company.TaxID}}<p>Tax ID: {{.Company.TaxID}}</p>{{end}}
      {{if .Company.Email}}<p>{{.Company.Email}}</p>{{end}}
    </div>
    <div class="party">
      <h3>Bill To</h3>
      <p><strong>{{.Customer.Name}}</strong></p>
      {{if .Customer.Address}}<p>{{.Customer.Address}}</p>{{end}}
      {{if .Customer.City}}<p>{{.Customer.City}}{{if .Customer.State}}, {{.Customer.State}}{{end}} {{.Customer.PostalCode}}</p>{{end}}
      {{if .Customer.Country}}<p>{{.Customer.Country}}</p>{{end}}
      {{if .Customer.TaxID}}<p>Tax ID: {{.Customer.TaxID}}</p>{{end}}
      {{if .Customer.Email}}<p>{{.Customer.Email}}</p>{{end}}
    </div>
  </div>

  <table class="lines">
    <thead>
      <tr>
        <th>Description</th>
        <th class="num">Qty</th>
        <th class="num">Unit Price</th>
        <th class="num">Tax</th>
        <th class="num">Amount</th>
      </tr>
    </thead>
    <tbody>
      {{range .Lines}}
      <tr>
        <td>{{.Description}}</td>
        <td class="num">{{formatDecimal .Quantity}}</td>
        <td class="num">{{formatMoney .UnitPrice $.Currency}}</td>
        <td class="num">{{formatPercent .TaxPercent}}</td>
        <td class="num">{{formatMoney .Total $.Currency}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>

  <div class="totals">
    <div class="row"><span>Subtotal</span><span>{{formatMoney .Subtotal .Currency}}</span></div>
    {{if not .DiscountTotal.IsZero}}<div class="row"><span>Discount</span><span>-{{formatMoney .DiscountTotal .Currency}}</span></div>{{end}}
    <div class="row"><span>Tax</span><span>{{formatMoney .TaxTotal .Currency}}</span></div>
    <div class="row grand"><span>Total</span><span>{{formatMoney .Total .Currency}}</span></div>
    {{if not .AmountPaid.IsZero}}
    <div class="row"><span>Paid</span><span>-{{formatMoney .AmountPaid .Currency}}</span></div>
    <div class="row due"><span>Amount Due</span><span>{{formatMoney .AmountDue .Currency}}</span></div>
    {{end}}
  </div>

  {{if .Notes}}
  <div class="notes">
    <h3>Notes</h3>
    <p>{{.Notes}}</p>
  </div>
  {{end}}
  {{if .Terms}}
  <div class="notes">
    <h3>Terms</h3>
    <p>{{.Terms}}</p>
  </div>
  {{end}}
</body>
</html>`

// defaultQuoteTemplate mirrors the invoice layout for quotes
const defaultQuoteTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Quote {{.Number}}</title>
<style>
  body { font-family: 'Helvetica Neue', Arial, sans-serif; font-size: 12px; color: #1a1a2e; margin: 0; }
  .header { display: flex; justify-content: space-between; margin-bottom: 32px; }
  h1 { font-size: 26px; letter-spacing: 2px; margin: 0 0 4px; }
  .meta { text-align: right; }
  .meta .number { font-size: 14px; font-weight: bold; }
  .status { display: inline-block; padding: 2px 10px; border-radius: 3px; background: #eef2f7; text-transform: uppercase; font-size: 10px; letter-spacing: 1px; }
  .parties { display: flex; justify-content: space-between; margin-bottom: 28px; }
  .party h3 { font-size: 10px; text-transform: uppercase; letter-spacing: 1px; color: #6b7280; margin: 0 0 6px; }
  .party p { margin: 1px 0; }
  table.lines { width: 100%; border-collapse: collapse; margin-bottom: 20px; }
  table.lines th { text-align: left; font-size: 10px; text-transform: uppercase; letter-spacing: 1px; color: #6b7280; border-bottom: 2px solid #1a1a2e; padding: 6px 8px; }
  table.lines td { padding: 8px; border-bottom: 1px solid #e5e7eb; }
  table.lines th.num, table.lines td.num { text-align: right; }
  .totals { width: 280px; margin-left: auto; }
  .totals .row { display: flex; justify-content: space-between; padding: 4px 8px; }
  .totals .grand { border-top: 2px solid #1a1a2e; font-weight: bold; font-size: 14px; padding-top: 8px; }
  .notes { margin-top: 32px; color: #4b5563; }
  .notes h3 { font-size: 10px; text-transform: uppercase; letter-spacing: 1px; color: #6b7280; margin: 0 0 4px; }
</style>
</head>
<body>
  <div class="header">
    <div>
      {{if .LogoURL}}<img src="{{.LogoURL}}" alt="">{{end}}
      <h1>QUOTE</h1>
      <span class="status">{{.Status}}</span>
    </div>
    <div class="meta">
      <div class="number">{{.Number}}</div>
      <div>Issued: {{formatDate .IssueDate}}</div>
      {{if .ValidUntil}}<div>Valid until: {{formatDate .ValidUntil}}</div>{{end}}
    </div>
  </div>

  <div class="parties">
    <div class="party">
      <h3>From</h3>
      <p><strong>{{.Company.Name}}</strong></p>
      {{if .Company.Address}}<p>{{.Company.Address}}</p>{{end}}
      {{if .Company.City}}<p>{{.Company.City}}{{if .Company.State}}, {{.Company.State}}{{end}} {{.Company.PostalCode}}</p>{{end}}
      {{if .Company.Email}}<p>{{.Company.Email}}</p>{{end}}
    </div>
    <div class="party">
      <h3>Prepared For</h3>
      <p><strong>{{.Customer.Name}}</strong></p>
      {{if .Customer.Address}}<p>{{.Customer.Address}}</p>{{end}}
      {{if .Customer.City}}<p>{{.Customer.City}}{{if .Customer.State}}, {{.Customer.State}}{{end}} {{.Customer.PostalCode}}</p>{{end}}
      {{if .Customer.Email}}<p>{{.Customer.Email}}</p>{{end}}
    </div>
  </div>

  <table class="lines">
    <thead>
      <tr>
        <th>Description</th>
        <th class="num">Qty</th>
        <th class="num">Unit Price</th>
        <th class="num">Tax</th>
        <th class="num">Amount</th>
      </tr>
    </thead>
    <tbody>
      {{range .Lines}}
      <tr>
        <td>{{.Description}}</td>
        <td class="num">{{formatDecimal .Quantity}}</td>
        <td class="num">{{formatMoney .UnitPrice $.Currency}}</td>
        <td class="num">{{formatPercent .TaxPercent}}</td>
        <td class="num">{{formatMoney .Total $.Currency}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>

  <div class="totals">
    <div class="row"><span>Subtotal</span><span>{{formatMoney .Subtotal .Currency}}</span></div>
    {{if not .DiscountTotal.IsZero}}<div class="row"><span>Discount</span><span>-{{formatMoney .DiscountTotal .Currency}}</span></div>{{end}}
    <div class="row"><span>Tax</span><span>{{formatMoney .TaxTotal .Currency}}</span></div>
    <div class="row grand"><span>Total</span><span>{{formatMoney .Total .Currency}}</span></div>
  </div>

  {{if .Notes}}
  <div class="notes">
    <h3>Notes</h3>
    <p>{{.Notes}}</p>
  </div>
  {{end}}
  {{if .Terms}}
  <div class="notes">
    <h3>Terms</h3>
    <p>{{.Terms}}</p>
  </div>
  {{end}}
</body>
</html>`
