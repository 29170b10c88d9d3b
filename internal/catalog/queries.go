package catalog

const productsQuery = `query Products($first: Int!) {
  products(first: $first) {
    edges {
      node {
        id
        title
        description
        status
        variants(first: $first) {
          edges {
            node {
              id
              price
              barcode
              createdAt
            }
          }
        }
      }
    }
  }
}`

const productUpdateMutation = `mutation ProductUpdate($input: ProductUpdateInput!) {
  productUpdate(product: $input) {
    product {
      id
      description
    }
    userErrors {
      field
      message
    }
  }
}`
